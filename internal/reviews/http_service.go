package reviews

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strconv"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/auth"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/backend"
)

// HTTPService implements Service against /api/reviews/.
type HTTPService struct {
	client *backend.Client
}

// NewHTTPService constructs a review service using the shared backend client.
func NewHTTPService(client *backend.Client) *HTTPService {
	return &HTTPService{client: client}
}

// Active implements Service.
func (s *HTTPService) Active(ctx context.Context) ([]Review, error) {
	var out []Review
	if err := s.client.Do(ctx, backend.Request{
		Operation: "reviews.active",
		Path:      "/api/reviews/active-reviews/",
	}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ForProduct implements Service.
func (s *HTTPService) ForProduct(ctx context.Context, productID int) ([]Review, error) {
	var out []Review
	if err := s.client.Do(ctx, backend.Request{
		Operation: "reviews.product",
		Path:      fmt.Sprintf("/api/reviews/%d/product-reviews/", productID),
	}, &out); err != nil {
		if backend.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

// Submit implements Service. Guests are turned away before any call.
func (s *HTTPService) Submit(ctx context.Context, creds auth.Credentials, productID int, draft Draft) error {
	if !creds.Authenticated() {
		return ErrLoginRequired
	}
	if err := draft.Validate(); err != nil {
		return err
	}
	body, contentType, err := encodeDraft(draft.Normalized())
	if err != nil {
		return err
	}
	return s.client.Do(ctx, backend.Request{
		Operation:   "reviews.add",
		Method:      http.MethodPost,
		Path:        fmt.Sprintf("/api/reviews/%d/reviews-add/", productID),
		Body:        body,
		ContentType: contentType,
		Auth:        creds,
	}, nil)
}

func encodeDraft(d Draft) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"name", d.Name},
		{"description", d.Description},
		{"rating", strconv.Itoa(d.Rating)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("reviews: write field %s: %w", f[0], err)
		}
	}
	for i, img := range d.Images {
		name := filepath.Base(img.Filename)
		if name == "." || name == "/" || name == "" {
			name = fmt.Sprintf("image-%d", i+1)
		}
		ct := img.ContentType
		if ct == "" {
			ct = http.DetectContentType(img.Data)
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename=%q`, name))
		h.Set("Content-Type", ct)
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("reviews: create image part: %w", err)
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, "", fmt.Errorf("reviews: write image: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("reviews: close multipart: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}
