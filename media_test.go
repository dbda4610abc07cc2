package ramik

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func TestSign(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]string
		want   string
	}{
		{
			name:   "upload params",
			params: map[string]string{"timestamp": "1700000000", "folder": "products"},
			want:   "5e4eab588efe92d21d4d62c266eeaebd51bfb6c8",
		},
		{
			name:   "destroy params",
			params: map[string]string{"timestamp": "1700000000", "public_id": "products/x1"},
			want:   "d60aac99876311afd0cd959f3e2103f5cf0c4f16",
		},
		{
			name:   "no params",
			params: map[string]string{},
			want:   "81fe8bfe87576c3ecb22426f8e57847382917acf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sign(tt.params, "abcd"); got != tt.want {
				t.Errorf("Sign() = %s, want %s", got, tt.want)
			}
		})
	}
}

// mediaHost fakes the upload and destroy endpoints. Files whose name starts
// with "bad" are rejected.
type mediaHost struct {
	mu        sync.Mutex
	uploaded  []string
	destroyed []string
}

func (h *mediaHost) register(t *testing.T, b *backend) {
	b.handle("POST /demo/image/upload", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("Failed to parse multipart form: %v", err)
			return
		}
		ts := r.FormValue("timestamp")
		if ts != "1767268800" {
			t.Errorf("Unexpected timestamp %q", ts)
		}
		if r.FormValue("api_key") != "key-1" || r.FormValue("folder") != "products" {
			t.Errorf("Unexpected form %v", r.MultipartForm.Value)
		}
		want := Sign(map[string]string{"folder": "products", "timestamp": ts}, "abcd")
		if r.FormValue("signature") != want {
			t.Errorf("Bad signature %q", r.FormValue("signature"))
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("Missing file: %v", err)
			return
		}
		defer file.Close()
		io.Copy(io.Discard, file)

		if strings.HasPrefix(header.Filename, "bad") {
			writeJSON(w, http.StatusBadRequest, `{"error":{"message":"File size too large"}}`)
			return
		}
		id := "products/" + strings.TrimSuffix(header.Filename, ".jpg")
		h.mu.Lock()
		h.uploaded = append(h.uploaded, id)
		h.mu.Unlock()
		writeJSON(w, http.StatusOK, `{"secure_url":"https://cdn.test/`+id+`.jpg","public_id":"`+id+`"}`)
	})
	b.handle("POST /demo/image/destroy", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("Failed to parse form: %v", err)
			return
		}
		id := r.PostFormValue("public_id")
		want := Sign(map[string]string{"public_id": id, "timestamp": r.PostFormValue("timestamp")}, "abcd")
		if r.PostFormValue("signature") != want {
			t.Errorf("Bad destroy signature for %s", id)
		}
		h.mu.Lock()
		h.destroyed = append(h.destroyed, id)
		h.mu.Unlock()
		writeJSON(w, http.StatusOK, `{"result":"ok"}`)
	})
}

func (h *mediaHost) destroyedIDs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.destroyed...)
}

func jpeg(name string) File {
	return File{Name: name, Content: strings.NewReader("\xff\xd8\xff" + name)}
}

func TestUpload(t *testing.T) {
	b := newBackend(t)
	clock := newFakeClock()
	c := newTestClient(t, b, clock)
	host := &mediaHost{}
	host.register(t, b)

	img, err := c.Media.Upload(context.Background(), jpeg("rose.jpg"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if img.URL != "https://cdn.test/products/rose.jpg" || img.PublicID != "products/rose" {
		t.Errorf("Unexpected image %+v", img)
	}

	_, err = c.Media.Upload(context.Background(), jpeg("bad.jpg"))
	var ue *UploadError
	if !errors.As(err, &ue) {
		t.Fatalf("Expected *UploadError, got %v", err)
	}
	if ue.File != "bad.jpg" || ue.Status != http.StatusBadRequest || ue.Message != "File size too large" {
		t.Errorf("Unexpected upload error %+v", ue)
	}
}

func TestUploadNotConfigured(t *testing.T) {
	b := newBackend(t)
	c := newTestClient(t, b, newFakeClock(), func(cfg *Config) {
		cfg.Media.APISecret = ""
	})

	_, err := c.Media.Upload(context.Background(), jpeg("rose.jpg"))
	if !errors.Is(err, ErrMediaNotConfigured) {
		t.Errorf("Expected ErrMediaNotConfigured, got %v", err)
	}
	if b.hits.Load() != 0 {
		t.Error("Unconfigured upload reached the network")
	}
}

func TestUploadAllKeepsSiblingsGoing(t *testing.T) {
	b := newBackend(t)
	clock := newFakeClock()
	c := newTestClient(t, b, clock)
	host := &mediaHost{}
	host.register(t, b)

	files := []File{jpeg("a.jpg"), jpeg("bad1.jpg"), jpeg("c.jpg"), jpeg("bad2.jpg")}
	images, err := c.Media.UploadAll(context.Background(), files)
	if err == nil {
		t.Fatal("Expected an error for the rejected files")
	}
	if len(images) != len(files) {
		t.Fatalf("Expected %d slots, got %d", len(files), len(images))
	}
	if images[0].PublicID != "products/a" || images[2].PublicID != "products/c" {
		t.Errorf("Successful uploads missing: %+v", images)
	}
	if images[1] != (Image{}) || images[3] != (Image{}) {
		t.Errorf("Failed slots should be empty: %+v", images)
	}

	var ue *UploadError
	if !errors.As(err, &ue) {
		t.Errorf("Expected an *UploadError in %v", err)
	}
	for _, name := range []string{"bad1.jpg", "bad2.jpg"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("Error should name %s: %v", name, err)
		}
	}
}

func validDraft() ProductDraft {
	return ProductDraft{
		PerfumeType:  PerfumeUnisex,
		Thumbnail:    jpeg("thumb.jpg"),
		Gallery:      []File{jpeg("g1.jpg"), jpeg("g2.jpg")},
		Sizes:        []SizeInput{{Size: ptr("100ml"), Stock: 5, Price: MustAmount("120")}},
		Translations: []TranslationInput{{LanguageID: 1, CategoryID: 3, Title: "Amber Night"}},
	}
}

func TestSubmitProduct(t *testing.T) {
	b := newBackend(t)
	clock := newFakeClock()
	c := newTestClient(t, b, clock)
	loggedIn(t, c, clock)
	host := &mediaHost{}
	host.register(t, b)

	b.handle("POST /api/products", func(w http.ResponseWriter, r *http.Request) {
		host.mu.Lock()
		n := len(host.uploaded)
		host.mu.Unlock()
		if n != 3 {
			t.Errorf("Product created before all uploads finished: %d of 3", n)
		}
		writeJSON(w, http.StatusCreated, `{"status":"success","data":{"productId":77}}`)
	})

	id, err := c.SubmitProduct(context.Background(), validDraft())
	if err != nil {
		t.Fatalf("SubmitProduct failed: %v", err)
	}
	if id != 77 {
		t.Errorf("Expected product 77, got %d", id)
	}
	if d := host.destroyedIDs(); len(d) != 0 {
		t.Errorf("Nothing should be destroyed on success, got %v", d)
	}
}

func TestSubmitProductFailures(t *testing.T) {
	tests := []struct {
		name          string
		gallery       []File
		createStatus  int
		keepOrphans   bool
		wantDestroyed []string
		wantCreate    int64
	}{
		{
			name:          "upload fails",
			gallery:       []File{jpeg("g1.jpg"), jpeg("bad.jpg")},
			wantDestroyed: []string{"products/g1", "products/thumb"},
			wantCreate:    0,
		},
		{
			name:          "create fails",
			gallery:       []File{jpeg("g1.jpg")},
			createStatus:  http.StatusBadRequest,
			wantDestroyed: []string{"products/g1", "products/thumb"},
			wantCreate:    1,
		},
		{
			name:        "orphans kept",
			gallery:     []File{jpeg("bad.jpg")},
			keepOrphans: true,
			wantCreate:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend(t)
			clock := newFakeClock()
			c := newTestClient(t, b, clock, func(cfg *Config) {
				cfg.Media.KeepOrphans = tt.keepOrphans
			})
			loggedIn(t, c, clock)
			host := &mediaHost{}
			host.register(t, b)

			var creates atomic.Int64
			b.handle("POST /api/products", func(w http.ResponseWriter, r *http.Request) {
				creates.Add(1)
				writeJSON(w, tt.createStatus, `{"message":"Category not found"}`)
			})

			draft := validDraft()
			draft.Gallery = tt.gallery
			if _, err := c.SubmitProduct(context.Background(), draft); err == nil {
				t.Fatal("Expected SubmitProduct to fail")
			}

			if got := creates.Load(); got != tt.wantCreate {
				t.Errorf("Expected %d create calls, got %d", tt.wantCreate, got)
			}
			got := host.destroyedIDs()
			if !sameSet(got, tt.wantDestroyed) {
				t.Errorf("Destroyed %v, want %v", got, tt.wantDestroyed)
			}
		})
	}
}

func TestSubmitProductValidatesBeforeUpload(t *testing.T) {
	b := newBackend(t)
	clock := newFakeClock()
	c := newTestClient(t, b, clock)
	loggedIn(t, c, clock)

	drafts := map[string]func(*ProductDraft){
		"too many gallery images": func(d *ProductDraft) {
			d.Gallery = []File{jpeg("1.jpg"), jpeg("2.jpg"), jpeg("3.jpg"), jpeg("4.jpg")}
		},
		"no thumbnail":         func(d *ProductDraft) { d.Thumbnail = File{} },
		"bad perfume type":     func(d *ProductDraft) { d.PerfumeType = "kids" },
		"no translations":      func(d *ProductDraft) { d.Translations = nil },
		"untitled translation": func(d *ProductDraft) { d.Translations[0].Title = "" },
	}

	for name, mutate := range drafts {
		t.Run(name, func(t *testing.T) {
			d := validDraft()
			mutate(&d)
			if _, err := c.SubmitProduct(context.Background(), d); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput, got %v", err)
			}
		})
	}
	if got := b.hits.Load(); got != 0 {
		t.Errorf("Invalid drafts reached the network %d times", got)
	}
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := map[string]int{}
	for _, s := range a {
		seen[s]++
	}
	for _, s := range b {
		if seen[s] == 0 {
			return false
		}
		seen[s]--
	}
	return true
}
