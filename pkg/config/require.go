package config

// Validate reports the first required setting that is missing.
func (c Config) Validate() error {
	required := []struct {
		value string
		name  string
	}{
		{c.DatabaseURL, "DATABASE_URL"},
		{c.Admin.JWTSecret, "JWT_SECRET"},
		{c.Admin.SessionKey, "SESSION_KEY"},
		{c.Admin.CSRFKey, "CSRF_KEY"},
		{c.Shopify.Shop, "SHOPIFY_SHOP"},
	}
	for _, r := range required {
		if r.value == "" {
			return &MissingError{Name: r.name}
		}
	}
	if len(c.Admin.CSRFKey) != 32 {
		return &MissingError{Name: "CSRF_KEY", Reason: "must be 32 bytes"}
	}
	return nil
}

type MissingError struct {
	Name   string
	Reason string
}

func (e *MissingError) Error() string {
	if e.Reason != "" {
		return "invalid env " + e.Name + ": " + e.Reason
	}
	return "missing required env " + e.Name
}
