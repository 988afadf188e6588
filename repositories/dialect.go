package repositories

import (
	"strconv"
	"strings"
)

// rpcStatement is one statement of a procedure emulated client-side.
// args receives (selfID, peerID) and returns the bind values in order.
type rpcStatement struct {
	query string
	args  func(selfID, peerID string) []any
}

// Dialect hides the differences between the SQL backends the store runs on.
// Queries are written with '?' placeholders and rebound per dialect.
type Dialect struct {
	Name       string
	DriverName string
	numbered   bool
	searchExpr string
	migrations []string
	// procedures maps an RPC name to its client-side body. When an RPC is
	// missing here, it is invoked server-side with SELECT name(?, ?).
	procedures map[string][]rpcStatement
}

var Postgres = Dialect{
	Name:       "postgres",
	DriverName: "postgres",
	numbered:   true,
	searchExpr: `content ILIKE ? ESCAPE '\'`,
	migrations: []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			avatar_url TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			sender_id TEXT NOT NULL,
			recipient_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			read BOOLEAN NOT NULL DEFAULT FALSE,
			message_status TEXT DEFAULT 'sent',
			edited_at TIMESTAMPTZ,
			attachment_url TEXT,
			deleted_by_recipient BOOLEAN NOT NULL DEFAULT FALSE,
			deleted_by_sender BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_pair
		ON messages(sender_id, recipient_id, created_at DESC)`,
		`CREATE OR REPLACE FUNCTION mark_conversation_as_read_v2(p_recipient_id TEXT, p_sender_id TEXT)
		RETURNS void AS $$
			UPDATE messages SET read = TRUE, message_status = 'read'
			WHERE recipient_id = p_recipient_id AND sender_id = p_sender_id AND read = FALSE;
		$$ LANGUAGE sql`,
		`CREATE OR REPLACE FUNCTION clear_conversation(p_user_id TEXT, p_other_user_id TEXT)
		RETURNS void AS $$
			UPDATE messages SET deleted_by_recipient = TRUE
			WHERE recipient_id = p_user_id AND sender_id = p_other_user_id;
			UPDATE messages SET deleted_by_sender = TRUE
			WHERE sender_id = p_user_id AND recipient_id = p_other_user_id;
		$$ LANGUAGE sql`,
	},
}

var SQLite = Dialect{
	Name:       "sqlite",
	DriverName: "sqlite",
	searchExpr: `casefold(content) LIKE casefold(?) ESCAPE '\'`,
	migrations: []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			avatar_url TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			sender_id TEXT NOT NULL,
			recipient_id TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now')),
			read BOOLEAN NOT NULL DEFAULT 0,
			message_status TEXT DEFAULT 'sent',
			edited_at DATETIME,
			attachment_url TEXT,
			deleted_by_recipient BOOLEAN NOT NULL DEFAULT 0,
			deleted_by_sender BOOLEAN NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_pair
		ON messages(sender_id, recipient_id, created_at DESC)`,
	},
	procedures: map[string][]rpcStatement{
		rpcMarkConversationRead: {{
			query: `UPDATE messages SET read = 1, message_status = 'read'
				WHERE recipient_id = ? AND sender_id = ? AND read = 0`,
			args: func(selfID, peerID string) []any { return []any{selfID, peerID} },
		}},
		rpcClearConversation: {
			{
				query: `UPDATE messages SET deleted_by_recipient = 1
					WHERE recipient_id = ? AND sender_id = ?`,
				args: func(selfID, peerID string) []any { return []any{selfID, peerID} },
			},
			{
				query: `UPDATE messages SET deleted_by_sender = 1
					WHERE sender_id = ? AND recipient_id = ?`,
				args: func(selfID, peerID string) []any { return []any{selfID, peerID} },
			},
		},
	},
}

// DialectByName resolves the STORE_BACKEND value of the configuration.
func DialectByName(name string) (Dialect, bool) {
	switch strings.ToLower(name) {
	case Postgres.Name, "postgresql":
		return Postgres, true
	case SQLite.Name, "sqlite3":
		return SQLite, true
	default:
		return Dialect{}, false
	}
}

// Rebind rewrites '?' placeholders into the dialect's syntax.
func (d Dialect) Rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// likePattern builds a substring pattern, escaping the LIKE wildcards of term.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
