package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
)

// Gzip transparently decompresses gzip request bodies and compresses JSON
// and text responses for clients that accept it. Binary upload content is
// passed through untouched.
func Gzip(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
			gzReader, err := gzip.NewReader(r.Body)
			if err != nil {
				http.Error(w, "Invalid gzip body", http.StatusBadRequest)
				return
			}
			defer gzReader.Close()
			r.Body = gzReader
		}

		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		grw := &gzipResponseWriter{ResponseWriter: w}
		defer grw.close()

		next.ServeHTTP(grw, r)
	})
}

type gzipResponseWriter struct {
	http.ResponseWriter
	gz          *gzip.Writer
	wroteHeader bool
}

func compressible(contentType string) bool {
	return strings.Contains(contentType, "application/json") ||
		strings.Contains(contentType, "text/html") ||
		strings.Contains(contentType, "text/plain")
}

// WriteHeader decides on compression once the handler has set its
// Content-Type, so that binary payloads stay uncompressed.
func (grw *gzipResponseWriter) WriteHeader(statusCode int) {
	if !grw.wroteHeader {
		grw.wroteHeader = true
		if compressible(grw.Header().Get("Content-Type")) {
			grw.Header().Set("Content-Encoding", "gzip")
			grw.Header().Del("Content-Length")
			grw.gz = gzip.NewWriter(grw.ResponseWriter)
		}
	}
	grw.ResponseWriter.WriteHeader(statusCode)
}

func (grw *gzipResponseWriter) Write(b []byte) (int, error) {
	if !grw.wroteHeader {
		grw.WriteHeader(http.StatusOK)
	}
	if grw.gz != nil {
		return grw.gz.Write(b)
	}
	return grw.ResponseWriter.Write(b)
}

func (grw *gzipResponseWriter) close() {
	if grw.gz != nil {
		grw.gz.Close()
	}
}

var _ io.Writer = (*gzipResponseWriter)(nil)
