package utils

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var cld *cloudinary.Cloudinary

// InitCloudinary initializes the Cloudinary client used for avatar upload
func InitCloudinary() error {
	var err error

	cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME")
	apiKey := os.Getenv("CLOUDINARY_API_KEY")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")

	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return fmt.Errorf("the Cloudinary environment variables are not defined")
	}

	cld, err = cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return fmt.Errorf("error initializing Cloudinary: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = cld.Admin.Ping(ctx)
	if err != nil {
		return fmt.Errorf("error checking the Cloudinary connection: %v", err)
	}

	LogSuccess("Cloudinary initialized, connection checked")
	return nil
}

func isValidImageType(filename string) bool {
	validExtensions := []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
	lowerFilename := strings.ToLower(filename)

	for _, ext := range validExtensions {
		if strings.HasSuffix(lowerFilename, ext) {
			return true
		}
	}
	return false
}

// UploadAvatar uploads a child-profile avatar and returns its public URL
func UploadAvatar(file *multipart.FileHeader) (string, error) {
	if !isValidImageType(file.Filename) {
		return "", fmt.Errorf("unsupported image format, use JPG, PNG, GIF or WEBP")
	}

	// 5MB max for an avatar
	if file.Size > 5*1024*1024 {
		return "", fmt.Errorf("image too large, maximum 5MB allowed")
	}

	if cld == nil {
		if err := InitCloudinary(); err != nil {
			return "", err
		}
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("error opening the file: %v", err)
	}
	defer src.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	publicID := fmt.Sprintf("avatar_%d", time.Now().Unix())

	uploadResult, err := cld.Upload.Upload(ctx, src, uploader.UploadParams{
		PublicID: publicID,
		Folder:   "katiopa/avatars",
	})
	if err != nil {
		return "", fmt.Errorf("error uploading to Cloudinary: %v", err)
	}

	return uploadResult.SecureURL, nil
}
