package checkout

import (
	"net/url"
	"regexp"
	"strings"
)

// DefaultCountry is used when the form leaves the country blank.
const DefaultCountry = "Pakistan"

// Validation messages.
const (
	MessageInvalidForm = "Please fill in all required fields correctly."
	MessageEmptyCart   = "Your cart is empty. Please add items before placing an order."
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Draft is the checkout form as submitted.
type Draft struct {
	FirstName              string
	LastName               string
	Email                  string
	Mobile                 string
	Address                string
	City                   string
	Country                string
	Zipcode                string
	ShipToDifferentAddress bool
	OrderNotes             string
}

// DraftFromForm reads the checkout form fields.
func DraftFromForm(form url.Values) Draft {
	return Draft{
		FirstName:              form.Get("first_name"),
		LastName:               form.Get("last_name"),
		Email:                  form.Get("email"),
		Mobile:                 form.Get("mobile"),
		Address:                form.Get("address"),
		City:                   form.Get("city"),
		Country:                form.Get("country"),
		Zipcode:                form.Get("zipcode"),
		ShipToDifferentAddress: isChecked(form.Get("ship_to_different_address")),
		OrderNotes:             form.Get("order_notes"),
	}
}

// Normalized trims every field and applies the default country.
func (d Draft) Normalized() Draft {
	out := Draft{
		FirstName:              strings.TrimSpace(d.FirstName),
		LastName:               strings.TrimSpace(d.LastName),
		Email:                  strings.TrimSpace(d.Email),
		Mobile:                 strings.TrimSpace(d.Mobile),
		Address:                strings.TrimSpace(d.Address),
		City:                   strings.TrimSpace(d.City),
		Country:                strings.TrimSpace(d.Country),
		Zipcode:                strings.TrimSpace(d.Zipcode),
		ShipToDifferentAddress: d.ShipToDifferentAddress,
		OrderNotes:             strings.TrimSpace(d.OrderNotes),
	}
	if out.Country == "" {
		out.Country = DefaultCountry
	}
	return out
}

// FieldErrors maps form field names to a message.
type FieldErrors map[string]string

// Has reports whether the field failed validation.
func (f FieldErrors) Has(field string) bool {
	_, ok := f[field]
	return ok
}

// Validate checks required fields and the email format. An empty result means the draft can
// be submitted.
func (d Draft) Validate() FieldErrors {
	n := d.Normalized()
	errs := FieldErrors{}
	required := []struct {
		field, value, label string
	}{
		{"first_name", n.FirstName, "First name is required."},
		{"last_name", n.LastName, "Last name is required."},
		{"address", n.Address, "Address is required."},
		{"city", n.City, "City is required."},
		{"mobile", n.Mobile, "Mobile number is required."},
		{"email", n.Email, "Email is required."},
	}
	for _, r := range required {
		if r.value == "" {
			errs[r.field] = r.label
		}
	}
	if n.Email != "" && !ValidEmail(n.Email) {
		errs["email"] = "Enter a valid email address."
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidEmail applies the storefront's loose address check.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func isChecked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "on", "true", "yes":
		return true
	}
	return false
}
