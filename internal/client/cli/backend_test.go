package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/eutype/internal/client/models"
)

// backend is an in-memory file service for driving the shell end to end.
type backend struct {
	mu sync.Mutex

	valid   bool
	files   map[string]*storedFile
	order   []string
	nextID  int
	reject  map[string]bool // "METHOD pattern" answered with 401
	calls   map[string]int
	logouts int
}

type storedFile struct {
	info    models.FileInfo
	content string
}

var fileTime = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newBackend() *backend {
	b := &backend{
		valid:  true,
		files:  make(map[string]*storedFile),
		nextID: 1,
		reject: make(map[string]bool),
		calls:  make(map[string]int),
	}
	b.add("Letter.ty", "eutype", `{"version":"1.0","type":"EUTYPE Document","name":"Letter",`+
		`"created":"2024-01-01T00:00:00.000Z","modified":"2024-05-01T10:00:00.000Z",`+
		`"html":"<h1>Intro</h1><p>Start here</p>","text":"Intro\n\nStart here"}`)
	b.add("photo.png", "", "PNG")
	b.add("Notes.ty", "eutype", `{"name":"Notes","html":"<p>n</p>","text":"n"}`)
	return b
}

func (b *backend) add(filename, appType, content string) string {
	id := strconv.Itoa(b.nextID)
	b.nextID++
	b.files[id] = &storedFile{
		info: models.FileInfo{
			ID:         models.FileID(id),
			Filename:   filename,
			Size:       int64(len(content)),
			CreatedAt:  models.NewTimestamp(fileTime),
			ModifiedAt: models.NewTimestamp(fileTime),
			AppType:    appType,
		},
		content: content,
	}
	b.order = append(b.order, id)
	return id
}

func (b *backend) file(id string) *storedFile {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.files[id]
}

func (b *backend) count(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[route]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()

	route := func(pattern string, h func(w http.ResponseWriter, r *http.Request)) {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.calls[pattern]++
			if b.reject[pattern] {
				w.WriteHeader(http.StatusUnauthorized)
				writeJSON(w, map[string]string{"detail": "Not authenticated"})
				return
			}
			h(w, r)
		})
	}
	withFile := func(h func(w http.ResponseWriter, r *http.Request, f *storedFile)) func(http.ResponseWriter, *http.Request) {
		return func(w http.ResponseWriter, r *http.Request) {
			f, ok := b.files[r.PathValue("id")]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				writeJSON(w, map[string]string{"detail": "File not found"})
				return
			}
			h(w, r, f)
		}
	}

	route("GET /api/auth/validate", func(w http.ResponseWriter, r *http.Request) {
		if !b.valid {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, models.SessionStatus{Valid: true, Username: "alice", Email: "alice@example.com"})
	})
	route("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, models.User{Username: "alice", Email: "alice@example.com"})
	})
	route("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		b.logouts++
		b.valid = false
	})
	route("GET /api/files/list", func(w http.ResponseWriter, r *http.Request) {
		l := models.Listing{Files: []models.FileInfo{}, Folders: []models.Folder{}}
		for _, id := range b.order {
			if f, ok := b.files[id]; ok {
				l.Files = append(l.Files, f.info)
			}
		}
		writeJSON(w, l)
	})
	route("GET /api/storage/usage", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, models.StorageUsage{UsedBytes: 2048, QuotaBytes: 10 * 1024 * 1024})
	})
	route("POST /api/files/upload", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		file, hdr, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		id := b.add(hdr.Filename, r.FormValue("app_type"), string(data))
		writeJSON(w, map[string]any{"file": b.files[id].info})
	})
	route("GET /api/files/{id}", withFile(func(w http.ResponseWriter, r *http.Request, f *storedFile) {
		writeJSON(w, map[string]any{"file": f.info})
	}))
	route("DELETE /api/files/{id}", withFile(func(w http.ResponseWriter, r *http.Request, f *storedFile) {
		delete(b.files, string(f.info.ID))
	}))
	route("GET /api/files/{id}/content", withFile(func(w http.ResponseWriter, r *http.Request, f *storedFile) {
		writeJSON(w, models.FileContent{Content: f.content, Filename: f.info.Filename, ModifiedAt: f.info.ModifiedAt})
	}))
	route("PUT /api/files/{id}/content", withFile(func(w http.ResponseWriter, r *http.Request, f *storedFile) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.content = r.PostFormValue("content")
		f.info.Size = int64(len(f.content))
	}))
	route("PUT /api/files/{id}/rename", withFile(func(w http.ResponseWriter, r *http.Request, f *storedFile) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		name := strings.TrimSpace(r.PostFormValue("new_name"))
		if !strings.HasSuffix(name, ".ty") {
			name += ".ty"
		}
		f.info.Filename = name
	}))
	route("GET /api/files/{id}/download", withFile(func(w http.ResponseWriter, r *http.Request, f *storedFile) {
		_, _ = io.WriteString(w, f.content)
	}))

	return mux
}
