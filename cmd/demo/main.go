package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/johnstarich/tally/source"
	"github.com/pkg/errors"
)

// serve procedurally generated pages of records in the transaction source format
func main() {
	port := flag.Uint("port", 8080, "Server port to listen on")
	count := flag.Int("count", 40, "Number of records to generate")
	pageSize := flag.Int("page-size", 10, "Number of records per page")
	account := flag.String("account", "demo", "Account name used to seed generated records")
	flag.Parse()

	if *pageSize < 1 {
		fmt.Fprintln(os.Stderr, "Page size must be a positive integer")
		os.Exit(2)
	}

	generator := Generator{
		Account: *account,
		Start:   time.Date(2013, 12, 22, 0, 0, 0, 0, time.UTC),
	}
	static := source.NewStatic(generator.Records(*count), *pageSize)

	addr := fmt.Sprintf("0.0.0.0:%d", *port)
	fmt.Printf("Starting server on %s...\n", addr)
	err := http.ListenAndServe(addr, handlePageRequest(static))
	if err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
}

var pageRe = regexp.MustCompile(`^/transactions/([0-9]+)\.json$`)

func handlePageRequest(src source.Source) http.HandlerFunc {
	return func(resp http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			resp.WriteHeader(http.StatusMethodNotAllowed)
			handleError(resp, errors.New("Method not allowed. Allowed methods: GET"))
			return
		}

		match := pageRe.FindStringSubmatch(req.URL.Path)
		if match == nil {
			resp.WriteHeader(http.StatusNotFound)
			handleError(resp, errors.Errorf("Page not found: %s", req.URL.Path))
			return
		}
		pageNum, err := strconv.Atoi(match[1])
		if err != nil || pageNum < 1 {
			resp.WriteHeader(http.StatusBadRequest)
			handleError(resp, errors.Errorf("Invalid page number: %s", match[1]))
			return
		}

		page, err := src.Page(req.Context(), pageNum)
		if err != nil {
			handleServerError(resp, err)
			return
		}
		resp.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(resp).Encode(page); err != nil {
			handleServerError(resp, err)
		}
	}
}

func handleServerError(resp http.ResponseWriter, err error) {
	fmt.Println(string(debug.Stack()))
	resp.WriteHeader(http.StatusInternalServerError)
	handleError(resp, err)
}

func handleError(resp http.ResponseWriter, err error) {
	fmt.Printf("Error: %s\n", err.Error())
	_, _ = resp.Write([]byte(err.Error()))
}
