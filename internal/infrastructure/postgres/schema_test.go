package postgres

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Column lists the repositories name in their SQL. A column absent from the
// DDL only surfaces as an undefined-column error at runtime, so the init
// migration is cross-checked here.
var repositoryColumns = map[string][]string{
	"users":              {"id", "user_id", "username", "full_name", "password_hash", "role", "designation", "department", "status", "created_at", "updated_at"},
	"sessions":           {"id", "session_id", "token_hash", "user_id", "created_at", "expires_at", "last_seen_at", "user_agent", "ip_address"},
	"documents":          {"id", "document_id", "document_number", "title", "department", "status", "owner_user_id", "created_at", "updated_at"},
	"document_versions":  splitColumns(versionColumns),
	"edit_locks":         {"id", "version_id", "user_id", "lock_token", "acquired_at", "expires_at", "last_heartbeat", "session_id", "ip_address", "user_agent"},
	"document_views":     {"id", "document_id", "version_id", "user_id", "viewed_at"},
	"audit_logs":         splitColumns(auditColumns),
	"notifications":      splitColumns(notificationColumns),
	"notification_rules": {"id", "rule_id", "name", "event", "expression", "target_group", "priority", "enabled", "created_at", "updated_at"},
	"document_comments":  splitColumns(commentColumns),
}

func TestMigrationsDefineRepositoryColumns(t *testing.T) {
	const dir = "../../../scripts/migrations"
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	tables := map[string]map[string]bool{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		ddl, err := os.ReadFile(dir + "/" + entry.Name())
		require.NoError(t, err)
		for name, cols := range parseCreateTables(string(ddl)) {
			tables[name] = cols
		}
	}

	for table, cols := range repositoryColumns {
		defined, ok := tables[table]
		require.True(t, ok, "table %s is not created by any migration", table)
		for _, col := range cols {
			require.Contains(t, defined, col, "table %s does not define column %s", table, col)
		}
	}
}

func splitColumns(list string) []string {
	parts := strings.Split(list, ",")
	cols := make([]string, 0, len(parts))
	for _, p := range parts {
		cols = append(cols, strings.TrimSpace(p))
	}
	return cols
}

// parseCreateTables extracts table name -> defined column set from the
// CREATE TABLE statements in the migration.
func parseCreateTables(ddl string) map[string]map[string]bool {
	tables := map[string]map[string]bool{}
	var current map[string]bool
	for _, line := range strings.Split(ddl, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "CREATE TABLE") {
			open := strings.Index(trimmed, "(")
			if open < 0 {
				continue
			}
			name := trimmed[:open]
			name = strings.TrimPrefix(name, "CREATE TABLE IF NOT EXISTS")
			name = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(name), "CREATE TABLE"))
			current = map[string]bool{}
			tables[name] = current
			continue
		}
		if current == nil {
			continue
		}
		if strings.HasPrefix(trimmed, ");") {
			current = nil
			continue
		}
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		first := strings.Fields(trimmed)[0]
		switch strings.ToUpper(first) {
		case "UNIQUE", "PRIMARY", "FOREIGN", "CONSTRAINT", "CHECK":
			continue
		}
		current[first] = true
	}
	return tables
}
