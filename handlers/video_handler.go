package handlers

import (
	"fmt"
	"log"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	config "github.com/nivedhr/assessment_portal/configs"
)

// videoFolder is the fixed object-storage prefix for webcam recordings.
const videoFolder = "interview-questions/interview-videos"

// VideoHandler streams webcam recordings from the test page to object
// storage. The caller owns retry policy; nothing is retried here.
type VideoHandler struct {
	store *session.Store
	cld   *cloudinary.Cloudinary
}

func NewVideoHandler(store *session.Store) (*VideoHandler, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage client: %w", err)
	}
	return &VideoHandler{store: store, cld: cld}, nil
}

// Upload stores the multipart video blob under a deterministic key built
// from the session's candidate id, attempt number and the upload time.
func (h *VideoHandler) Upload(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized access"})
	}
	candidateID, ok := sess.Get("candidate_id").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized access"})
	}
	attemptNumber, _ := sess.Get("attempt_number").(int)
	if attemptNumber == 0 {
		attemptNumber = 1
	}

	fileHeader, err := c.FormFile("video")
	if err != nil {
		log.Printf("video: no video file received for candidate %d", candidateID)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "No video file"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("video: failed to open upload for candidate %d: %v", candidateID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error uploading video"})
	}
	defer file.Close()

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	publicID := fmt.Sprintf("candidate%dattempt%d%s", candidateID, attemptNumber, timestamp)

	_, err = h.cld.Upload.Upload(c.Context(), file, uploader.UploadParams{
		PublicID:     publicID,
		Folder:       videoFolder,
		ResourceType: "video",
		Format:       "webm",
	})
	if err != nil {
		log.Printf("video: upload failed for candidate %d: %v", candidateID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": fmt.Sprintf("Error uploading video: %v", err)})
	}

	log.Printf("video: uploaded %s/%s for candidate %d", videoFolder, publicID, candidateID)
	return c.JSON(fiber.Map{"message": "Video uploaded to storage"})
}
