package aws

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func GetS3Client() *s3.Client {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Printf("Could not load default config: %s\n", err.Error())
		return nil
	}
	svc := s3.NewFromConfig(cfg)
	return svc
}

// S3UploadObject stores a guest upload (payment proof, identity document)
// under the given key and waits until the object is visible.
func S3UploadObject(key string, body io.Reader, contentType string) error {
	uploadsBucket := os.Getenv("S3_UPLOADS_BUCKET")
	client := GetS3Client()
	_, err := client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      aws.String(uploadsBucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		log.Printf("Could not put object to S3 bucket: %s\n", err.Error())
		return err
	}
	err = s3.NewObjectExistsWaiter(client).Wait(context.Background(), &s3.HeadObjectInput{
		Bucket: aws.String(uploadsBucket),
		Key:    aws.String(key),
	}, time.Minute)
	if err != nil {
		log.Printf("Failed attempt to wait for object %s to exist: %s\n", key, err.Error())
		return err
	}
	log.Printf("Added object '%s' to bucket '%s'", key, uploadsBucket)
	return nil
}

// S3PresignURL returns a time-limited GET URL so admins can review guest
// uploads without the bucket being public.
func S3PresignURL(key string) (*string, error) {
	uploadsBucket := os.Getenv("S3_UPLOADS_BUCKET")
	client := GetS3Client()
	pre := s3.NewPresignClient(client)
	r, err := pre.PresignGetObject(context.TODO(), &s3.GetObjectInput{
		Bucket: aws.String(uploadsBucket),
		Key:    aws.String(key),
	}, func(po *s3.PresignOptions) {
		po.Expires = time.Duration(3600 * time.Second)
	})
	if err != nil {
		log.Printf("Could not generate presigned URL for object [%s]: %s\n", key, err.Error())
		return nil, err
	}
	return &r.URL, nil
}

func S3DeleteObject(key string) error {
	uploadsBucket := os.Getenv("S3_UPLOADS_BUCKET")
	client := GetS3Client()
	_, err := client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(uploadsBucket),
		Key:    aws.String(key),
	})
	if err != nil {
		log.Printf("Could not delete object [%s]: %s\n", key, err.Error())
		return err
	}
	return nil
}
