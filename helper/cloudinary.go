package helper

import (
	"context"
	"log"
	"mime/multipart"
	"os"
	"sync"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var (
	cld     *cloudinary.Cloudinary
	cldOnce sync.Once
)

func InitCloudinary() *cloudinary.Cloudinary {
	cldOnce.Do(func() {
		var err error
		cld, err = cloudinary.NewFromParams(
			os.Getenv("CLOUDINARY_CLOUD_NAME"),
			os.Getenv("CLOUDINARY_API_KEY"),
			os.Getenv("CLOUDINARY_API_SECRET"),
		)
		if err != nil {
			log.Fatalf("Cloudinary init failed: %v", err)
		}
	})
	return cld
}

// UploadPaymentScreenshot pushes the customer's payment proof to storage
// and returns the public URL to persist on the order.
func UploadPaymentScreenshot(ctx context.Context, file *multipart.FileHeader, orderId string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	resp, err := InitCloudinary().Upload.Upload(ctx, src, uploader.UploadParams{
		Folder:   "payment_screenshots",
		PublicID: orderId,
	})
	if err != nil {
		return "", err
	}
	return resp.SecureURL, nil
}
