// Background processor for the photo directory: builds resized web variants
// of each image and fills in OCR alt text for the matching database row.
// Runs over the existing files once, then keeps watching for new ones.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fsnotify/fsnotify"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"photocap/models"
	"photocap/pkg/autocaption"
)

const variantWidth = 800

var db *gorm.DB

func main() {
	dir := flag.String("dir", defaultImageDir(), "image directory to process")
	workers := flag.Int("workers", 2, "concurrent processing workers")
	once := flag.Bool("once", false, "process existing files and exit instead of watching")
	flag.Parse()

	dsn := os.Getenv("PHOTOCAP_DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("PHOTOCAP_DB_DSN not set in environment")
	}
	var err error
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(*dir, "web"), 0755); err != nil {
		log.Fatalf("mkdir variants: %v", err)
	}

	fileCh := make(chan string, 256)
	var wg sync.WaitGroup
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range fileCh {
				processFile(*dir, name)
			}
		}()
	}

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if !e.IsDir() && isSupportedExt(e.Name()) {
			fileCh <- e.Name()
		}
	}

	if *once {
		close(fileCh)
		wg.Wait()
		return
	}
	if err := watchDirectory(*dir, fileCh); err != nil {
		log.Fatalf("watch: %v", err)
	}
}

// processFile builds the resized variant and stores OCR alt text on the
// image row whose URL matches the file.
func processFile(dir, name string) {
	src := filepath.Join(dir, name)
	dst := filepath.Join(dir, "web", name)

	img, err := imaging.Open(src)
	if err != nil {
		log.Printf("skip %s: %v", name, err)
		return
	}
	if img.Bounds().Dx() > variantWidth {
		img = imaging.Resize(img, variantWidth, 0, imaging.Lanczos)
	}
	if err := imaging.Save(img, dst); err != nil {
		log.Printf("save variant %s: %v", name, err)
	}

	var image models.Image
	if err := db.Where("url = ?", "/images/"+name).First(&image).Error; err != nil {
		// No row yet; an admin may register the image later.
		return
	}
	if image.AltText != "" {
		return
	}
	text, err := autocaption.ExtractText(src)
	if err != nil {
		log.Printf("ocr %s: %v", name, err)
		return
	}
	if text == "" {
		return
	}
	if err := db.Model(&image).Update("alt_text", text).Error; err != nil {
		log.Printf("update alt text %s: %v", name, err)
		return
	}
	log.Printf("alt text for %s: %q", name, snippet(text, 60))
}

// watchDirectory blocks, feeding debounced newly created files into fileCh.
func watchDirectory(dir string, fileCh chan<- string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	log.Printf("Watching %s (debounced) ...", dir)

	// simple debounce map of pending files
	pending := map[string]time.Time{}
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create == fsnotify.Create {
				name := filepath.Base(ev.Name)
				if isSupportedExt(name) {
					pending[name] = time.Now()
				}
			}
		case <-ticker.C:
			now := time.Now()
			for name, t := range pending {
				if now.Sub(t) > 300*time.Millisecond { // stable
					fileCh <- name
					delete(pending, name)
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", err)
		}
	}
}

func isSupportedExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".tif", ".tiff", ".bmp":
		return true
	}
	return false
}

func defaultImageDir() string {
	if v := os.Getenv("PHOTOCAP_IMAGE_DIR"); v != "" {
		return v
	}
	return "images"
}

func snippet(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
