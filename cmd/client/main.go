package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
)

const serverPort = 8080

// main smoke-tests a running service: it creates one contact, uploads a CSV
// file given on the command line and prints the import summary, then fetches
// the export.
//
// Usage example on the command line:
// > go run main.go ../../scripts/contacts-sample.csv
func main() {
	createBody := []byte(`{
		"contact_id": "900001",
		"first_name": "Marcus",
		"last_name": "Antonius",
		"phone": "+39 999 777 555",
		"contact_created_date": "11/9/2023"
	}`)
	status, body := send(http.MethodPost, url("/contacts"), "application/json", bytes.NewReader(createBody))
	fmt.Printf("POST /contacts -> %d\n%s\n\n", status, body)

	if len(os.Args) > 1 {
		status, body = upload(os.Args[1])
		fmt.Printf("POST /contacts/upload -> %d\n", status)
		var summary map[string]interface{}
		if err := json.Unmarshal(body, &summary); err == nil {
			fmt.Printf("  totalRecords=%v inserted=%v updated=%v skipped=%v\n",
				summary["totalRecords"], summary["inserted"], summary["updated"], summary["skipped"])
			if errs, ok := summary["errors"].([]interface{}); ok {
				for _, e := range errs {
					fmt.Println("  error:", e)
				}
			}
		}
		fmt.Println()
	}

	status, body = send(http.MethodGet, url("/contacts/export"), "", nil)
	fmt.Printf("GET /contacts/export -> %d (%d bytes)\n", status, len(body))
}

func url(path string) string {
	return fmt.Sprintf("http://localhost:%d%s", serverPort, path)
}

func upload(file string) (int, []byte) {
	data, err := os.ReadFile(file)
	if err != nil {
		fmt.Println("could not read file", err)
		panic(err)
	}
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", file)
	if err != nil {
		panic(err)
	}
	fw.Write(data)
	w.Close()
	return send(http.MethodPost, url("/contacts/upload"), w.FormDataContentType(), &buf)
}

func send(method string, requestURL string, contentType string, bodyReader io.Reader) (int, []byte) {
	req, err := http.NewRequest(method, requestURL, bodyReader)
	if err != nil {
		fmt.Println("could not create request", err)
		panic(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println("error making http request", err)
		panic(err)
	}
	defer res.Body.Close()
	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		fmt.Println("could not read response body", err)
		panic(err)
	}
	return res.StatusCode, resBody
}
