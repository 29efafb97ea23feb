package handlers

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gin-gonic/gin"
)

// UploadImage accepts a multipart image and stores it on Cloudinary,
// returning the hosted URL for use in a post's images array.
func UploadImage(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		fail(c, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	if header.Size > 10<<20 {
		fail(c, http.StatusBadRequest, "image must be under 10MB")
		return
	}

	cld, err := cloudinary.NewFromURL(os.Getenv("CLOUDINARY_URL"))
	if err != nil {
		log.Printf("Cloudinary config error: %v", err)
		fail(c, http.StatusInternalServerError, "Image upload not configured")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	uploadResult, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         "travelhub/posts/" + userID.Hex(),
		Transformation: "c_limit,w_1600,h_1600,q_auto",
	})
	if err != nil {
		log.Printf("Cloudinary upload error: %v", err)
		fail(c, http.StatusInternalServerError, "Failed to upload image")
		return
	}

	respond(c, http.StatusCreated, gin.H{"url": uploadResult.SecureURL})
}
