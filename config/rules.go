package config

import (
	"encoding/json"
	"os"

	"backend/services"

	"github.com/sirupsen/logrus"
)

// LoadRuleTables reads an optional JSON override for the trigger keyword
// tables (RULES_FILE env var), falling back to the built-in defaults. Rule
// updates ship as data, not redeployed logic.
func LoadRuleTables() services.RuleTables {
	path := os.Getenv("RULES_FILE")
	if path == "" {
		return services.DefaultRuleTables()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		logrus.WithError(err).Warnf("cannot read rules file %s, using defaults", path)
		return services.DefaultRuleTables()
	}

	var tables services.RuleTables
	if err := json.Unmarshal(raw, &tables); err != nil {
		logrus.WithError(err).Warnf("cannot parse rules file %s, using defaults", path)
		return services.DefaultRuleTables()
	}
	logrus.Infof("loaded trigger rules from %s (%d conditions)", path, len(tables))
	return tables
}
