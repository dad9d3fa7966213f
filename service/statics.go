package service

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

const (
	DefaultServerPort int    = 9820
	DefaultListenAddr string = "127.0.0.1"
)

var (
	staticsServer   *http.Server
	uriHandlerCache map[string]http.Handler
)

// registerHandler register handler for specified uri
func registerHandler(uri string, handler http.Handler) error {
	if uri == "" {
		return errors.New("uri can not be empty")
	}

	if handler == nil {
		return errors.New("handler can not be empty")
	}

	if !strings.HasPrefix(uri, "/") {
		uri = "/" + uri
	}

	if _, exist := uriHandlerCache[uri]; exist {
		return fmt.Errorf("handler for URI[%s] is already exist", uri)
	}

	uriHandlerCache[uri] = handler

	return nil
}

// indexHandler lists every registered statics URI.
func indexHandler(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path != "/" {
		http.NotFound(w, req)
		return
	}

	uris := make([]string, 0, len(uriHandlerCache))
	for uri := range uriHandlerCache {
		uris = append(uris, uri)
	}
	sort.Strings(uris)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	w.Write([]byte(`<ul>`))

	for _, uri := range uris {
		w.Write([]byte(fmt.Sprintf(
			`<li><a href="%s">%s</a></li>`, uri, uri,
		)))
	}

	w.Write([]byte(`</ul>`))
}

// StartStaticsServer start statics server
func StartStaticsServer(ctx context.Context, addr string, port int) (err error) {
	if addr == "" || port <= 0 {
		addr = DefaultListenAddr
		port = DefaultServerPort
	}

	listen := fmt.Sprintf("%s:%d", addr, port)

	staticsRouter := http.NewServeMux()
	staticsRouter.HandleFunc("/", indexHandler)

	for uri, handler := range uriHandlerCache {
		staticsRouter.Handle(uri, handler)
	}

	staticsServer = &http.Server{
		Addr:    listen,
		Handler: staticsRouter,
	}

	log.Println("Starting statics server on:", "http://"+listen)

	errCh := make(chan error)

	go func() {
		errCh <- staticsServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err = <-errCh:
	}

	return
}

// ShutStaticsServer shutdown server
func ShutStaticsServer(ctx context.Context) error {
	return staticsServer.Shutdown(ctx)
}

// StartDefaultStaticsServer start statics server with default listener
func StartDefaultStaticsServer(ctx context.Context) error {
	return StartStaticsServer(ctx, "", 0)
}

func init() {
	uriHandlerCache = make(map[string]http.Handler)
}
