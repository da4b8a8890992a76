package config

import "os"

// Config captures everything main needs to wire the server.
type Config struct {
	Addr        string
	DatabaseURL string
	JWTSecret   string
	// UploadURL is the unsigned upload endpoint of the blob host; empty keeps
	// uploads disabled (URLs stay null).
	UploadURL    string
	UploadPreset string
	GeoAPIURL    string
	CORSOrigin   string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":3000"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		// Development default - must be overridden in production.
		jwtSecret = "dev-secret-change-me"
	}

	geoAPI := os.Getenv("GEO_API_URL")
	if geoAPI == "" {
		geoAPI = "https://apis.digital.gob.cl/dpa"
	}

	corsOrigin := os.Getenv("CORS_ORIGIN")
	if corsOrigin == "" {
		corsOrigin = "http://localhost:4200"
	}

	return Config{
		Addr:         addr,
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		JWTSecret:    jwtSecret,
		UploadURL:    os.Getenv("UPLOAD_URL"),
		UploadPreset: os.Getenv("UPLOAD_PRESET"),
		GeoAPIURL:    geoAPI,
		CORSOrigin:   corsOrigin,
	}
}
