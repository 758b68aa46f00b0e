package server

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"dkit-partners/src/helpers"
	"dkit-partners/src/models"
)

// -----------------------------------------------------------------------------
// Request validation
//
// Range and limit parameters are rejected when unparsable instead of being
// silently treated as unbounded. Project field rules mirror the onboarding
// form.
// -----------------------------------------------------------------------------

const maxTxLimit = 1000

var (
	emailRe      = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	btcAddressRe = regexp.MustCompile(`^(1|3|bc1)[a-zA-Z0-9]{25,62}$`)
	chainNameRe  = regexp.MustCompile(`^[a-z0-9-]{1,32}$`)
)

// Accepted layouts for the from/to query parameters.
var rangeLayouts = []string{time.RFC3339, "2006-01-02"}

// -----------------------------------------------------------------------------

// parseRangeParam parses an optional from/to bound. Empty means unbounded.
func parseRangeParam(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	for _, layout := range rangeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}

	return nil, helpers.NewValidationError(fmt.Sprintf("invalid %s date: %q", name, value))
}

// -----------------------------------------------------------------------------

// parseLimitParam parses the transactions limit. Empty selects the default.
func parseLimitParam(value string) (int, error) {
	if value == "" {
		return 0, nil
	}

	limit, err := strconv.Atoi(value)
	if err != nil {
		return 0, helpers.NewValidationError("limit must be a valid number")
	}
	if limit <= 0 || limit > maxTxLimit {
		return 0, helpers.NewValidationError(fmt.Sprintf("limit must be between 1 and %d", maxTxLimit))
	}

	return limit, nil
}

// -----------------------------------------------------------------------------
// Registration
// -----------------------------------------------------------------------------

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func validateRegisterRequest(req registerRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return helpers.NewValidationError("Name is required")
	}
	if !emailRe.MatchString(req.Email) {
		return helpers.NewValidationError("Invalid email address")
	}
	if len(req.Password) < 6 {
		return helpers.NewValidationError("Password must be at least 6 characters")
	}
	if req.Password != req.ConfirmPassword {
		return helpers.NewValidationError("Passwords don't match")
	}
	return nil
}

// -----------------------------------------------------------------------------
// Project updates
// -----------------------------------------------------------------------------

func validateProjectUpdate(updates models.MProjectUpdate) error {
	if updates.Name != nil && strings.TrimSpace(*updates.Name) == "" {
		return helpers.NewValidationError("Project name is required")
	}

	if updates.DappUrl != nil && *updates.DappUrl != "" {
		u, err := url.Parse(*updates.DappUrl)
		if err != nil || u.Scheme != "https" || u.Host == "" {
			return helpers.NewValidationError("Must be a valid HTTPS URL or empty")
		}
	}

	if updates.BtcAddress != nil && *updates.BtcAddress != "" && !btcAddressRe.MatchString(*updates.BtcAddress) {
		return helpers.NewValidationError("Invalid Bitcoin address")
	}

	if updates.ThorName != nil && *updates.ThorName != "" && !chainNameRe.MatchString(*updates.ThorName) {
		return helpers.NewValidationError("THORName must be lowercase letters, digits, and dashes only (1-32 chars)")
	}

	if updates.MayaName != nil && *updates.MayaName != "" && !chainNameRe.MatchString(*updates.MayaName) {
		return helpers.NewValidationError("MayaName must be lowercase letters, digits, and dashes only (1-32 chars)")
	}

	return nil
}
