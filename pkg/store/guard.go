package store

import (
	"fmt"
	"regexp"

	"github.com/corazawaf/libinjection-go"
)

// identifierRe matches the identifiers the sanitizer produces. Anything
// else never reaches SQL text.
var identifierRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// guardIdentifier rejects any name unsafe to interpolate into DDL. DDL
// identifiers cannot be bound as parameters, so every table and column
// name passes through here first.
func guardIdentifier(name string) error {
	if !identifierRe.MatchString(name) {
		return fmt.Errorf("unsafe identifier %q", name)
	}
	if sqli, _ := libinjection.IsSQLi(name); sqli {
		return fmt.Errorf("identifier %q rejected as SQL injection", name)
	}
	return nil
}

func guardSchema(tableName string, columnNames []string) error {
	if err := guardIdentifier(tableName); err != nil {
		return err
	}
	for _, name := range columnNames {
		if err := guardIdentifier(name); err != nil {
			return err
		}
	}
	return nil
}
