package kaggle

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Credentials holds a Kaggle API username and key. The JSON tags match the
// kaggle.json file written by the official CLI.
type Credentials struct {
	Username string `json:"username"`
	Key      string `json:"key"`
}

// LoadCredentials resolves API credentials the way the official CLI does:
// the KAGGLE_USERNAME and KAGGLE_KEY environment variables when both are
// set, otherwise kaggle.json under KAGGLE_CONFIG_DIR or ~/.kaggle. ok is
// false when no source yields a complete pair; callers may still attempt an
// anonymous download.
func LoadCredentials() (creds Credentials, ok bool) {
	creds = Credentials{
		Username: os.Getenv("KAGGLE_USERNAME"),
		Key:      os.Getenv("KAGGLE_KEY"),
	}
	if creds.Username != "" && creds.Key != "" {
		return creds, true
	}

	dir := os.Getenv("KAGGLE_CONFIG_DIR")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Credentials{}, false
		}
		dir = filepath.Join(home, ".kaggle")
	}

	raw, err := os.ReadFile(filepath.Join(dir, "kaggle.json"))
	if err != nil {
		return Credentials{}, false
	}
	var fromFile Credentials
	if err := json.Unmarshal(raw, &fromFile); err != nil {
		return Credentials{}, false
	}
	if fromFile.Username == "" || fromFile.Key == "" {
		return Credentials{}, false
	}
	return fromFile, true
}
