package credentialexchange

import (
	"fmt"
	"log"
	"os"
	"path"
)

func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Fatal("unable to get the user home dir")
	}
	return home
}

// ConfigIniFile is the tool's own config file, not the shared credentials file.
func ConfigIniFile(basePath string) string {
	var base string
	if basePath != "" {
		base = basePath
	} else {
		base = HomeDir()
	}
	return path.Join(base, fmt.Sprintf(".%s.ini", SELF_NAME))
}

// SharedCredentialsFile resolves the credential profile file the same way
// other AWS tooling does, honouring the env var override.
func SharedCredentialsFile() string {
	if overriddenPath, exists := os.LookupEnv(AWS_SHARED_CREDS_VAR); exists {
		return overriddenPath
	}
	return path.Join(HomeDir(), ".aws", "credentials")
}

func SessionName(username, selfName string) string {
	return fmt.Sprintf("%s-%s", username, selfName)
}
