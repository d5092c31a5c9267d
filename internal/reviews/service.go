// Package reviews lists customer reviews and submits new product reviews.
package reviews

import (
	"context"
	"errors"
	"html"
	"net/http"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/auth"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/backend"
)

// MaxImages caps the attachments on one review.
const MaxImages = 2

// Messages shown around review submission.
const (
	MessageLoginRequired  = "Please log in to submit a review."
	MessageSessionExpired = "Your session has expired. Please log in again."
	MessageNotEligible    = "You are not eligible to review this product."
	MessageSubmitFailed   = "Failed to submit review. Please try again."
	MessageSubmitted      = "Thank you! Your review has been submitted."
)

// DraftError is a validation problem reported to the customer verbatim.
type DraftError string

// Error implements the error interface.
func (e DraftError) Error() string { return string(e) }

// Draft validation errors.
const (
	ErrNameRequired        DraftError = "Please enter your name."
	ErrDescriptionRequired DraftError = "Please write your review."
	ErrRatingRange         DraftError = "Please select a rating between 1 and 5."
	ErrTooManyImages       DraftError = "You can upload a maximum of 2 images."
	ErrNotImage            DraftError = "Only image files are allowed."
)

// Service reads and writes reviews on the storefront API.
type Service interface {
	// Active returns every published review, newest first as the API orders them.
	Active(ctx context.Context) ([]Review, error)
	// ForProduct returns the reviews of one product.
	ForProduct(ctx context.Context, productID int) ([]Review, error)
	// Submit uploads a review. Only signed-in customers may review.
	Submit(ctx context.Context, creds auth.Credentials, productID int, draft Draft) error
}

// Review is a published review.
type Review struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Rating      Rating `json:"rating"`
	Image       string `json:"image"`
	CreatedAt   string `json:"created_at"`
}

// Rating is a 1..5 star score. The API has sent it both as a number and as a string.
type Rating int

// UnmarshalJSON implements json.Unmarshaler.
func (r *Rating) UnmarshalJSON(data []byte) error {
	text := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if text == "" || text == "null" {
		*r = 0
		return nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return err
	}
	*r = Rating(int(f + 0.5)).Clamp()
	return nil
}

// Clamp limits the rating to 0..5.
func (r Rating) Clamp() Rating {
	switch {
	case r < 0:
		return 0
	case r > 5:
		return 5
	}
	return r
}

// Stars reports, for positions one to five, whether the star is filled.
func (r Rating) Stars() []bool {
	out := make([]bool, 5)
	for i := range out {
		out[i] = i < int(r.Clamp())
	}
	return out
}

// Upload is one attached image.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Draft is a review as entered by the customer.
type Draft struct {
	Name        string
	Description string
	Rating      int
	Images      []Upload
}

var textPolicy = bluemonday.StrictPolicy()

// Normalized trims the text fields and strips any markup.
func (d Draft) Normalized() Draft {
	d.Name = plainText(d.Name)
	d.Description = plainText(d.Description)
	return d
}

func plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

// Validate returns the first problem with the draft, or nil.
func (d Draft) Validate() error {
	n := d.Normalized()
	switch {
	case n.Name == "":
		return ErrNameRequired
	case n.Description == "":
		return ErrDescriptionRequired
	case n.Rating < 1 || n.Rating > 5:
		return ErrRatingRange
	case len(n.Images) > MaxImages:
		return ErrTooManyImages
	}
	for _, img := range n.Images {
		if !isImage(img) {
			return ErrNotImage
		}
	}
	return nil
}

func isImage(u Upload) bool {
	ct := u.ContentType
	if len(u.Data) > 0 {
		ct = http.DetectContentType(u.Data)
	}
	return strings.HasPrefix(ct, "image/")
}

// SubmitErrorMessage maps a failed submission to visitor-facing text.
func SubmitErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrLoginRequired) {
		return MessageLoginRequired
	}
	var draftErr DraftError
	if errors.As(err, &draftErr) {
		return draftErr.Error()
	}
	apiErr, ok := backend.AsError(err)
	if !ok {
		return MessageSubmitFailed
	}
	switch apiErr.Status {
	case http.StatusUnauthorized:
		return MessageSessionExpired
	case http.StatusForbidden:
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return MessageNotEligible
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	return MessageSubmitFailed
}

// ErrLoginRequired is returned when a guest or anonymous visitor submits a review.
var ErrLoginRequired = errors.New("reviews: login required")
