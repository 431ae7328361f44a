package gallery

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/showcase/core/access"
	"github.com/relabs-tech/showcase/core/kss"
)

type fakeDriver struct {
	objects []kss.Object
	listErr error
	signErr error
	signed  []string
}

func (f *fakeDriver) ListAllWithPrefix(ctx context.Context, prefix string) ([]kss.Object, error) {
	return f.objects, f.listErr
}

func (f *fakeDriver) GetPreSignedURL(ctx context.Context, method kss.Method, key string, expireIn time.Duration) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	f.signed = append(f.signed, key)
	return "https://bucket.example.com/" + key + "?expires=" + expireIn.String(), nil
}

var testPolicy = Policy{StandardLimit: 3, TTL: time.Hour}

func testObjects() []kss.Object {
	modified := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	return []kss.Object{
		{Key: "images/"},
		{Key: "images/a.png", Size: 10, LastModified: modified},
		{Key: "images/b.png", Size: 20, LastModified: modified},
		{Key: "images/archive/"},
		{Key: "images/c.png", Size: 30},
		{Key: "images/d.png", Size: 40},
		{Key: "images/e.png", Size: 50},
	}
}

func TestFetch_Admin(t *testing.T) {
	driver := &fakeDriver{objects: testObjects()}
	store := NewStore(driver, "images/", testPolicy)
	issued := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return issued }

	images, err := store.Fetch(context.Background(), access.Admin)
	require.NoError(t, err)
	require.Len(t, images, 5)
	assert.Equal(t, Image{
		Key:          "images/a.png",
		Name:         "a.png",
		URL:          "https://bucket.example.com/images/a.png?expires=1h0m0s",
		Size:         10,
		LastModified: "2024-02-03T04:05:06Z",
		ExpiresAt:    "2024-06-01T11:00:00Z",
	}, images[0])
	assert.Equal(t, "", images[2].LastModified)
	assert.Equal(t, []string{"images/a.png", "images/b.png", "images/c.png", "images/d.png", "images/e.png"}, driver.signed)
}

func TestFetch_StandardGetsFirstImages(t *testing.T) {
	driver := &fakeDriver{objects: testObjects()}
	store := NewStore(driver, "images/", testPolicy)

	images, err := store.Fetch(context.Background(), access.Standard)
	require.NoError(t, err)
	require.Len(t, images, 3)
	assert.Equal(t, "images/a.png", images[0].Key)
	assert.Equal(t, "images/b.png", images[1].Key)
	assert.Equal(t, "images/c.png", images[2].Key)
	// only what is returned gets signed
	assert.Len(t, driver.signed, 3)
}

func TestFetch_EmptyBucket(t *testing.T) {
	store := NewStore(&fakeDriver{objects: []kss.Object{{Key: "images/"}}}, "images/", testPolicy)
	images, err := store.Fetch(context.Background(), access.Admin)
	require.NoError(t, err)
	assert.NotNil(t, images)
	assert.Empty(t, images)
}

func TestFetch_Errors(t *testing.T) {
	store := NewStore(&fakeDriver{listErr: errors.New("AccessDenied")}, "images/", testPolicy)
	_, err := store.Fetch(context.Background(), access.Admin)
	assert.ErrorContains(t, err, "AccessDenied")

	store = NewStore(&fakeDriver{objects: testObjects(), signErr: errors.New("no credentials")}, "images/", testPolicy)
	_, err = store.Fetch(context.Background(), access.Standard)
	assert.ErrorContains(t, err, "no credentials")

	store = NewStore(nil, "images/", testPolicy)
	_, err = store.Fetch(context.Background(), access.Standard)
	assert.Error(t, err)
}

type staticLister struct {
	keys []string
}

func (l staticLister) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{}
	for _, k := range l.keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func TestFetch_SignedURLsCarryTTL(t *testing.T) {
	client := s3.NewFromConfig(aws.Config{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "SECRETEXAMPLE", ""),
	})
	driver := kss.NewS3WithClients(staticLister{keys: []string{"images/", "images/a.png", "images/b.png"}}, s3.NewPresignClient(client), "showcase-images", "")
	store := NewStore(driver, "images/", testPolicy)

	before := time.Now()
	images, err := store.Fetch(context.Background(), access.Admin)
	require.NoError(t, err)
	require.Len(t, images, 2)

	for _, img := range images {
		u, err := url.Parse(img.URL)
		require.NoError(t, err)
		assert.Equal(t, "https", u.Scheme)
		assert.Contains(t, u.Host, "showcase-images")
		assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))

		expiresAt, err := time.Parse(time.RFC3339, img.ExpiresAt)
		require.NoError(t, err)
		assert.WithinDuration(t, before.Add(time.Hour), expiresAt, 5*time.Second)
	}
}

func TestFallback(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	admin := Fallback(access.Admin, testPolicy, now)
	assert.Len(t, admin, len(fallbackImages))

	standard := Fallback(access.Standard, testPolicy, now)
	require.Len(t, standard, 3)
	assert.Equal(t, admin[:3], standard)
	for _, img := range standard {
		assert.Equal(t, "2024-06-01T11:00:00Z", img.ExpiresAt)
		u, err := url.Parse(img.URL)
		require.NoError(t, err)
		assert.Equal(t, "https", u.Scheme)
	}
	assert.Empty(t, fallbackImages[0].ExpiresAt)
}
