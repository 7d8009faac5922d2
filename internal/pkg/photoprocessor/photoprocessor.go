package photoprocessor

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2/log"
	"github.com/kolesa-team/go-webp/decoder"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"

	"github.com/resumedesk/ResumeDesk/app/models"
	"github.com/resumedesk/ResumeDesk/internal/pkg/constants"
	"github.com/resumedesk/ResumeDesk/internal/pkg/database"
)

// Variant sizes in pixels. Profile photos are square cropped.
const (
	DisplaySize = 400
	ThumbSize   = 96
)

// Directory paths
const (
	OriginalDir = constants.UploadsPath + "/photos/original"
	DisplayDir  = constants.UploadsPath + "/photos/display"
	ThumbDir    = constants.UploadsPath + "/photos/thumb"
	WebpDir     = constants.UploadsPath + "/photos/webp"
	MaxWorkers  = 2
)

const jpegQuality = 90

// PhotoProcessor handles profile photo processing with a worker pool
type PhotoProcessor struct {
	jobs            chan *ProcessJob
	wg              sync.WaitGroup
	started         bool
	mutex           sync.Mutex
	activeProcesses int32
	memoryThrottle  chan struct{}
}

// ProcessJob represents a single photo processing job
type ProcessJob struct {
	Resume       *models.Resume
	OriginalPath string
	WebpVariant  bool
}

// Variants describes the files a processing run produced
type Variants struct {
	DisplayPath string
	ThumbPath   string
	WebpPath    string
	Width       int
	Height      int
}

var processor *PhotoProcessor
var once sync.Once

// GetProcessor returns the singleton photo processor instance
func GetProcessor() *PhotoProcessor {
	once.Do(func() {
		processor = &PhotoProcessor{
			jobs:           make(chan *ProcessJob, 100),
			memoryThrottle: make(chan struct{}, MaxWorkers),
		}
		processor.Start()
	})
	return processor
}

// Start initializes the worker pool
func (p *PhotoProcessor) Start() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.started {
		return
	}

	p.started = true
	for i := 0; i < MaxWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	log.Info("[PhotoProcessor] Started worker pool with ", MaxWorkers, " workers")
}

// Stop gracefully shuts down the worker pool
func (p *PhotoProcessor) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.started {
		return
	}

	close(p.jobs)
	p.wg.Wait()
	p.started = false
	log.Info("[PhotoProcessor] Worker pool stopped")
}

// worker processes jobs from the queue
func (p *PhotoProcessor) worker(id int) {
	defer p.wg.Done()
	log.Info(fmt.Sprintf("[PhotoProcessor] Worker %d started", id))

	for job := range p.jobs {
		p.memoryThrottle <- struct{}{}
		atomic.AddInt32(&p.activeProcesses, 1)

		log.Info(fmt.Sprintf("[PhotoProcessor] Worker %d processing photo for resume %s (Active: %d)",
			id, job.Resume.UUID, atomic.LoadInt32(&p.activeProcesses)))

		err := processPhoto(job.Resume, job.OriginalPath, job.WebpVariant)

		<-p.memoryThrottle
		atomic.AddInt32(&p.activeProcesses, -1)

		if err != nil {
			log.Error(fmt.Sprintf("[PhotoProcessor] Worker %d failed to process photo for resume %s: %v", id, job.Resume.UUID, err))
		} else {
			log.Info(fmt.Sprintf("[PhotoProcessor] Worker %d completed photo for resume %s", id, job.Resume.UUID))
		}

		time.Sleep(100 * time.Millisecond)
	}

	log.Info(fmt.Sprintf("[PhotoProcessor] Worker %d stopped", id))
}

// EnqueuePhoto adds a photo to the processing queue
func (p *PhotoProcessor) EnqueuePhoto(resume *models.Resume, originalPath string, webpVariant bool) {
	if !p.started {
		p.Start()
	}

	p.jobs <- &ProcessJob{
		Resume:       resume,
		OriginalPath: originalPath,
		WebpVariant:  webpVariant,
	}
	log.Info(fmt.Sprintf("[PhotoProcessor] Enqueued photo for resume %s", resume.UUID))
}

// ProcessPhoto queues a photo for processing
func ProcessPhoto(resume *models.Resume, originalPath string, webpVariant bool) error {
	SetPhotoStatus(resume.UUID, STATUS_PENDING)
	GetProcessor().EnqueuePhoto(resume, originalPath, webpVariant)
	return nil
}

// ProcessPhotoSync runs the full photo pipeline in the calling goroutine.
// The job queue uses this; it provides its own workers.
func ProcessPhotoSync(resume *models.Resume, originalPath string, webpVariant bool) error {
	return processPhoto(resume, originalPath, webpVariant)
}

// processPhoto runs the file work and records the result on the resume row
func processPhoto(resume *models.Resume, originalPath string, webpVariant bool) error {
	log.Info(fmt.Sprintf("[PhotoProcessor] Processing photo for resume %s", resume.UUID))

	SetPhotoStatus(resume.UUID, STATUS_PROCESSING)

	variants, err := ProcessFile(originalPath, resume.UUID, webpVariant)
	if err != nil {
		SetPhotoStatus(resume.UUID, STATUS_FAILED)
		return err
	}

	db := database.GetDB()
	if err := db.Model(resume).Updates(map[string]interface{}{
		"photo_path":     variants.DisplayPath,
		"has_photo_webp": variants.WebpPath != "",
	}).Error; err != nil {
		SetPhotoStatus(resume.UUID, STATUS_FAILED)
		return fmt.Errorf("error updating resume photo columns: %w", err)
	}
	resume.PhotoPath = variants.DisplayPath
	resume.HasPhotoWebp = variants.WebpPath != ""

	log.Info(fmt.Sprintf("[PhotoProcessor] Photo processing completed for resume %s", resume.UUID))

	SetPhotoStatus(resume.UUID, STATUS_COMPLETED)
	return nil
}

// VariantPaths derives the storage paths for a photo UUID
func VariantPaths(photoUUID string) (display, thumb, webpPath string) {
	display = filepath.Join(DisplayDir, photoUUID+".jpg")
	thumb = filepath.Join(ThumbDir, photoUUID+".jpg")
	webpPath = filepath.Join(WebpDir, photoUUID+".webp")
	return display, thumb, webpPath
}

// ProcessFile creates the display and thumbnail variants for an uploaded
// photo. EXIF orientation is applied before cropping. Pure file work; the
// caller owns any database or cache updates.
func ProcessFile(originalPath, photoUUID string, withWebp bool) (*Variants, error) {
	orientation := ReadOrientation(originalPath)

	img, err := openPhoto(originalPath)
	if err != nil {
		return nil, fmt.Errorf("error opening photo: %w", err)
	}
	img = ApplyOrientation(img, orientation)

	width := img.Bounds().Dx()
	height := img.Bounds().Dy()

	displayPath, thumbPath, webpPath := VariantPaths(photoUUID)
	for _, dir := range []string{DisplayDir, ThumbDir, WebpDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("error creating directory %s: %w", dir, err)
		}
	}

	display := imaging.Fill(img, DisplaySize, DisplaySize, imaging.Center, imaging.Lanczos)
	if err := imaging.Save(display, displayPath, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("error saving display variant: %w", err)
	}

	thumb := imaging.Fill(img, ThumbSize, ThumbSize, imaging.Center, imaging.Lanczos)
	if err := imaging.Save(thumb, thumbPath, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("error saving thumbnail: %w", err)
	}

	variants := &Variants{
		DisplayPath: displayPath,
		ThumbPath:   thumbPath,
		Width:       width,
		Height:      height,
	}

	if withWebp {
		if err := saveWebP(display, webpPath); err != nil {
			// JPEG variants already exist and can serve every client
			log.Error(fmt.Sprintf("[PhotoProcessor] Error saving WebP variant: %v", err))
		} else {
			variants.WebpPath = webpPath
			log.Info(fmt.Sprintf("[PhotoProcessor] WebP variant created: %s", webpPath))
		}
	}

	return variants, nil
}

// RemoveVariants deletes all variant files for a photo UUID
func RemoveVariants(photoUUID string) {
	display, thumb, webpPath := VariantPaths(photoUUID)
	for _, path := range []string{display, thumb, webpPath} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Error(fmt.Sprintf("[PhotoProcessor] Error removing %s: %v", path, err))
		}
	}

	// Original keeps its upload extension
	matches, _ := filepath.Glob(filepath.Join(OriginalDir, photoUUID+".*"))
	for _, match := range matches {
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			log.Error(fmt.Sprintf("[PhotoProcessor] Error removing %s: %v", match, err))
		}
	}
}

// FindOriginalPath locates the stored original for a photo UUID. Originals
// keep their upload extension, so the lookup globs for it.
func FindOriginalPath(photoUUID string) (string, bool) {
	matches, _ := filepath.Glob(filepath.Join(OriginalDir, photoUUID+".*"))
	if len(matches) == 0 {
		return "", false
	}
	return matches[0], true
}

// openPhoto decodes the uploaded file. WebP uploads need their own decoder;
// everything else goes through imaging.
func openPhoto(path string) (image.Image, error) {
	if strings.ToLower(filepath.Ext(path)) == ".webp" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return webp.Decode(f, &decoder.Options{})
	}
	return imaging.Open(path)
}

// saveWebP saves an image in WebP format
func saveWebP(img image.Image, outputPath string) error {
	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	output, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("error creating WebP file: %w", err)
	}
	defer output.Close()

	options, err := encoder.NewLossyEncoderOptions(encoder.PresetPhoto, 85)
	if err != nil {
		return fmt.Errorf("error creating encoder options: %w", err)
	}

	if err := webp.Encode(output, img, options); err != nil {
		return fmt.Errorf("error encoding WebP image: %w", err)
	}

	return nil
}
