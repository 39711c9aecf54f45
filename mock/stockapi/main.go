// Command stockapi serves canned stock-photo search results for offline development.
//
// Point the provider base URLs at it, e.g. APP_PROVIDER_PEXELS_BASE_URL=http://localhost:8090.
// Flickr results link to staticflickr.com because the scraper only keeps those images.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/jpeg"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"photo-curator-service/internal/domain"
	"photo-curator-service/internal/infra/provider/pexels"
	"photo-curator-service/internal/infra/provider/pixabay"
	"photo-curator-service/internal/infra/provider/unsplash"
)

const defaultPerPage = 15

func main() {
	addr := ":8090"
	if v := os.Getenv("MOCK_ADDR"); v != "" {
		addr = v
	}
	base := "http://localhost" + addr
	if strings.Contains(addr, "://") {
		base = addr
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/search", pexelsHandler(base))
	mux.HandleFunc("/api/", pixabayHandler(base))
	mux.HandleFunc("/search/photos", unsplashHandler(base))
	mux.HandleFunc("/search/", flickrHandler)
	mux.HandleFunc("/img/", imageHandler)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"healthy"}`)); err != nil {
			log.Printf("[stockapi] Health write error: %v", err)
		}
	})

	log.Printf("Mock stock API running on %s", addr)
	server := &http.Server{
		Addr:         addr,
		Handler:      logRequests(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Simulate network latency (50-200ms)
		time.Sleep(time.Duration(50+time.Now().UnixNano()%150) * time.Millisecond)
		next.ServeHTTP(w, r)
		log.Printf("[stockapi] %s %s", r.Method, r.URL.RequestURI())
	})
}

// seed derives stable ids from the query so each term has its own photos.
func seed(query string) int64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(query)))
	return int64(h.Sum32()%100000) * 100
}

func perPage(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("per_page"))
	if err != nil || n <= 0 {
		return defaultPerPage
	}
	return min(n, 80)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[stockapi] Write error: %v", err)
	}
}

func pexelsHandler(base string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}

		query := r.URL.Query().Get("query")
		n := perPage(r)
		resp := pexels.Response{Page: 1, PerPage: n, TotalResults: n}
		for i := range n {
			id := seed(query) + int64(i) + 1
			img := fmt.Sprintf("%s/img/pexels-%d.jpeg", base, id)
			resp.Photos = append(resp.Photos, pexels.Photo{
				ID:           id,
				Width:        1600,
				Height:       1200,
				URL:          fmt.Sprintf("https://www.pexels.com/photo/%s-%d/", strings.ReplaceAll(query, " ", "-"), id),
				Photographer: "Mock Photographer",
				Alt:          query,
				Src: pexels.Src{
					Original:  img,
					Large2x:   img + "?w=940&dpr=2",
					Large:     img + "?h=650",
					Medium:    img + "?h=350",
					Small:     img + "?h=130",
					Portrait:  img + "?fit=crop&h=1200&w=800",
					Landscape: img + "?fit=crop&h=627&w=1200",
					Tiny:      img + "?h=200&w=280",
				},
			})
		}
		writeJSON(w, resp)
	}
}

func pixabayHandler(base string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") == "" {
			http.Error(w, "[ERROR 400] \"key\" is missing.", http.StatusBadRequest)
			return
		}

		query := r.URL.Query().Get("q")
		n := perPage(r)
		resp := pixabay.Response{Total: n, TotalHits: n}
		for i := range n {
			id := seed(query) + int64(i) + 1
			img := fmt.Sprintf("%s/img/pixabay-%d.jpg", base, id)
			resp.Hits = append(resp.Hits, domain.PixabayRecord{
				ID:            id,
				PageURL:       fmt.Sprintf("https://pixabay.com/photos/mock-%d/", id),
				Type:          "photo",
				Tags:          query + ", mock, sample",
				PreviewURL:    img + "?s=150",
				WebformatURL:  img + "?s=640",
				LargeImageURL: img,
				ImageWidth:    1920,
				ImageHeight:   1280,
				User:          "mockuser",
			})
		}
		writeJSON(w, resp)
	}
}

func unsplashHandler(base string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("client_id") == "" && r.Header.Get("Authorization") == "" {
			http.Error(w, `{"errors":["OAuth error: The access token is invalid"]}`, http.StatusUnauthorized)
			return
		}

		query := r.URL.Query().Get("query")
		n := perPage(r)
		resp := unsplash.Response{Total: n, TotalPages: 1}
		for i := range n {
			id := "mock" + strconv.FormatInt(seed(query)+int64(i)+1, 36)
			img := fmt.Sprintf("%s/img/unsplash-%s.jpg", base, id)
			resp.Results = append(resp.Results, domain.UnsplashRecord{
				ID:             id,
				Width:          4000,
				Height:         3000,
				AltDescription: query,
				URLs: domain.UnsplashURLs{
					Raw:     img + "?ixid=mock",
					Full:    img + "?q=85&ixid=mock",
					Regular: img + "?w=1080&ixid=mock",
					Small:   img + "?w=400&ixid=mock",
					Thumb:   img + "?w=200&ixid=mock",
				},
				User: domain.UnsplashUser{Username: "mockuser", Name: "Mock User"},
			})
		}
		writeJSON(w, resp)
	}
}

func flickrHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("text")

	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><body><div class=\"search-results\">\n")
	for i := range defaultPerPage {
		id := seed(query) + int64(i) + 1
		fmt.Fprintf(&b, "<div class=\"photo\"><img src=\"//live.staticflickr.com/65535/%d_%x_m.jpg\" alt=\"%s\"></div>\n", id, id*7919, query)
	}
	b.WriteString("<img src=\"/images/logo.png\">\n</div></body></html>\n")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(b.String())); err != nil {
		log.Printf("[stockapi] Write error: %v", err)
	}
}

// imageHandler renders a solid JPEG whose color depends on the path.
func imageHandler(w http.ResponseWriter, r *http.Request) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(r.URL.Path))
	sum := h.Sum32()

	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	fill := color.RGBA{R: uint8(sum), G: uint8(sum >> 8), B: uint8(sum >> 16), A: 255}
	for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
		for x := img.Rect.Min.X; x < img.Rect.Max.X; x++ {
			img.Set(x, y, fill)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("[stockapi] Image write error: %v", err)
	}
}
