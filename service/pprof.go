package service

import (
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"sort"
	"strings"
)

var (
	pprofProfiles = []string{
		"goroutine", "threadcreate", "heap", "allocs", "block", "mutex",
	}

	pprofFuncs = map[string]http.HandlerFunc{
		"profile": pprof.Profile,
		"cmdline": pprof.Cmdline,
		"symbol":  pprof.Symbol,
		"trace":   pprof.Trace,
	}
)

type pprofIndex struct {
	baseURI string
	entries []string
}

func (idx *pprofIndex) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	names := make([]string, len(idx.entries))
	copy(names, idx.entries)
	sort.Strings(names)

	w.Write([]byte(`<ul>`))

	for _, name := range names {
		w.Write([]byte(fmt.Sprintf(
			`<li><a href="%s/%s">%s</a></li>`, idx.baseURI, name, name,
		)))
	}

	w.Write([]byte(`</ul>`))
}

// CollectPProfStatics collect pprof statics & expose on uri
func CollectPProfStatics(uri string) error {
	if uri == "" {
		uri = "/debug"
	}

	if !strings.HasPrefix(uri, "/") {
		uri = "/" + uri
	}

	index := pprofIndex{baseURI: uri + "/pprof"}

	for _, name := range pprofProfiles {
		if err := registerHandler(
			index.baseURI+"/"+name, pprof.Handler(name),
		); err != nil {
			return err
		}

		index.entries = append(index.entries, name)

		log.Print("Register pprof profile at:", index.baseURI+"/"+name)
	}

	for name, fn := range pprofFuncs {
		if err := registerHandler(index.baseURI+"/"+name, fn); err != nil {
			return err
		}

		index.entries = append(index.entries, name)

		log.Print("Register pprof extra functions at:", index.baseURI+"/"+name)
	}

	if err := registerHandler(index.baseURI, &index); err != nil {
		return err
	}

	log.Printf("Pprof URI registered, expose stats at \"%s\"", index.baseURI)

	return nil
}
