package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"reservation-service/internal/entity"
)

type restaurantsFile struct {
	Restaurants []entity.Restaurant `yaml:"restaurants"`
}

// LoadRestaurants reads the restaurant seed file. ${VAR} references are expanded first.
func LoadRestaurants(path string) ([]entity.Restaurant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var file restaurantsFile
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for i, r := range file.Restaurants {
		if r.Name == "" || r.Address == "" {
			return nil, fmt.Errorf("%s: restaurant #%d needs a name and an address", path, i+1)
		}
		if r.DailyLimit < 0 {
			return nil, fmt.Errorf("%s: restaurant %q has a negative daily_limit", path, r.Name)
		}
	}
	return file.Restaurants, nil
}
