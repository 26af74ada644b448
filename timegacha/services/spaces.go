// services/spaces.go
package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// SpacesService stores card art in an S3-compatible bucket
// (DigitalOcean Spaces) and builds the CDN URLs templates carry.
type SpacesService struct {
	client   *s3.Client
	bucket   string
	region   string
	cardRoot string
}

func NewSpacesService(spacesKey, spacesSecret, region, bucket, cardRoot string) (*SpacesService, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(spacesKey, spacesSecret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load Spaces config: %w", err)
	}

	return &SpacesService{
		client:   s3.NewFromConfig(cfg),
		bucket:   bucket,
		region:   region,
		cardRoot: strings.TrimPrefix(cardRoot, "/"),
	}, nil
}

// CardImageURL builds the CDN URL for a template's art.
func (s *SpacesService) CardImageURL(series, character string, rarity int) string {
	return fmt.Sprintf("https://%s.%s.cdn.digitaloceanspaces.com/%s", s.bucket, s.region, s.cardImageKey(series, character, rarity))
}

func (s *SpacesService) UploadCardImage(ctx context.Context, series, character string, rarity int, body io.Reader) error {
	key := s.cardImageKey(series, character, rarity)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        body,
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload card image %s: %w", key, err)
	}
	return nil
}

func (s *SpacesService) DeleteCardImage(ctx context.Context, series, character string, rarity int) error {
	key := s.cardImageKey(series, character, rarity)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("failed to delete card image %s: %w", key, err)
	}
	return nil
}

func (s *SpacesService) cardImageKey(series, character string, rarity int) string {
	return fmt.Sprintf("%s/%s/%d_%s.jpg", s.cardRoot, slugify(series), rarity, slugify(character))
}

func slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}
