package storagetest

import "github.com/joho/godotenv"

// LoadDotEnv overlays the nearest .env files onto the process environment so
// integration runs can pick up connection strings from the repo root.
func LoadDotEnv() {
	for _, path := range []string{".env", "../.env", "../../.env", "../../../.env"} {
		_ = godotenv.Overload(path)
	}
}
