package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/cconley717/contact-keeper-manager/internal/config"
)

// Blocks until the service answers its listing endpoint on the configured
// port, then exits 0. Exits 1 when the deadline passes first. Meant for
// compose scripts that need the API up before seeding data.
func main() {
	timeout := flag.Duration("timeout", 2*time.Minute, "give up after this long")
	flag.Parse()

	cfg := config.Load()
	url := fmt.Sprintf("http://localhost:%d/contacts", cfg.Port)
	client := &http.Client{Timeout: 5 * time.Second}

	deadline := time.Now().Add(*timeout)
	for waited := 0; ; waited += 5 {
		res, err := client.Get(url)
		if err == nil {
			res.Body.Close()
			if res.StatusCode == http.StatusOK {
				fmt.Printf("%s answered %s after %d seconds\n", url, res.Status, waited)
				return
			}
			fmt.Println(res.Status)
		} else {
			fmt.Println(err)
		}
		if time.Now().After(deadline) {
			fmt.Printf("%s still not available after %s\n", url, *timeout)
			os.Exit(1)
		}
		fmt.Printf("waiting, %d seconds so far\n", waited+5)
		time.Sleep(5 * time.Second)
	}
}
