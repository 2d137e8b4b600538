package config

import (
	"errors"
	"os"
)

// ProvisionConfig is what the admin provisioning command needs: the
// identity store and the hashing cost. Signing keys are not required.
type ProvisionConfig struct {
	MongoURI      string
	MongoDatabase string
	BcryptCost    int
}

func LoadProvisionConfig() (*ProvisionConfig, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		return nil, errors.New("MONGO_URI environment variable is required")
	}
	cost, err := getInt64("BCRYPT_COST", 0, 10)
	if err != nil {
		return nil, err
	}

	return &ProvisionConfig{
		MongoURI:      mongoURI,
		MongoDatabase: getenv("MONGO_DATABASE", "", "rentals"),
		BcryptCost:    int(cost),
	}, nil
}
