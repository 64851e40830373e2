package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// migratedDB opens a fresh database in a temp dir with the schema applied.
func migratedDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{
			name: "valid path",
			path: filepath.Join(t.TempDir(), "test.db"),
		},
		{
			name:    "missing directory",
			path:    "/nonexistent/path/to/db.db",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := New(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Errorf("New() expected error, got nil")
				}
				if db != nil {
					_ = db.Close()
				}
				return
			}
			if err != nil {
				t.Fatalf("New() unexpected error: %v", err)
			}
			defer func() { _ = db.Close() }()

			if db.Stats().MaxOpenConnections != 25 {
				t.Errorf("MaxOpenConnections = %v, want 25", db.Stats().MaxOpenConnections)
			}
			if err := db.Ping(); err != nil {
				t.Errorf("Ping() error = %v", err)
			}

			var fkEnabled int
			if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled); err != nil {
				t.Fatalf("failed to read foreign_keys pragma: %v", err)
			}
			if fkEnabled != 1 {
				t.Error("New() should enable foreign keys")
			}
		})
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := migratedDB(t)

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() second run error = %v", err)
	}

	for _, object := range []struct{ kind, name string }{
		{"table", "chat_history"},
		{"index", "idx_chat_history_session"},
	} {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type=? AND name=?", object.kind, object.name).Scan(&count)
		if err != nil {
			t.Fatalf("failed to check %s %s: %v", object.kind, object.name, err)
		}
		if count != 1 {
			t.Errorf("%s %s: count = %d, want 1", object.kind, object.name, count)
		}
	}
}

func TestMigrate_ChatHistoryColumns(t *testing.T) {
	db := migratedDB(t)

	rows, err := db.Query("PRAGMA table_info(chat_history)")
	if err != nil {
		t.Fatalf("PRAGMA table_info error = %v", err)
	}
	defer func() { _ = rows.Close() }()

	type column struct {
		notNull bool
		pk      bool
	}
	got := map[string]column{}
	for rows.Next() {
		var (
			cid       int
			name, typ string
			notNull   int
			dflt      sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			t.Fatalf("scan column: %v", err)
		}
		got[name] = column{notNull: notNull == 1, pk: pk == 1}
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows error = %v", err)
	}

	want := map[string]column{
		"seq":        {pk: true},
		"id":         {notNull: true},
		"session_id": {notNull: true},
		"user_id":    {},
		"role":       {notNull: true},
		"content":    {notNull: true},
		"metadata":   {},
		"created_at": {notNull: true},
	}
	if len(got) != len(want) {
		t.Errorf("chat_history has %d columns, want %d: %v", len(got), len(want), got)
	}
	for name, w := range want {
		g, ok := got[name]
		if !ok {
			t.Errorf("column %s missing", name)
			continue
		}
		if g != w {
			t.Errorf("column %s = %+v, want %+v", name, g, w)
		}
	}
}

func TestMigrate_RoleConstraint(t *testing.T) {
	db := migratedDB(t)

	tests := []struct {
		name    string
		id      string
		role    string
		wantErr bool
	}{
		{name: "user", id: "m1", role: "user"},
		{name: "assistant", id: "m2", role: "assistant"},
		{name: "system rejected", id: "m3", role: "system", wantErr: true},
		{name: "empty rejected", id: "m4", role: "", wantErr: true},
		{name: "case sensitive", id: "m5", role: "User", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Exec(
				`INSERT INTO chat_history (id, session_id, role, content, created_at) VALUES (?, 's1', ?, 'hi', '2026-01-01T00:00:00Z')`,
				tt.id, tt.role,
			)
			if (err != nil) != tt.wantErr {
				t.Errorf("insert role %q: error = %v, wantErr %v", tt.role, err, tt.wantErr)
			}
		})
	}
}

func TestMigrate_DuplicateMessageID(t *testing.T) {
	db := migratedDB(t)

	const insert = `INSERT INTO chat_history (id, session_id, role, content, created_at) VALUES ('dup', ?, 'user', 'hi', '2026-01-01T00:00:00Z')`
	if _, err := db.Exec(insert, "s1"); err != nil {
		t.Fatalf("first insert error = %v", err)
	}
	if _, err := db.Exec(insert, "s2"); err == nil {
		t.Error("second insert with the same id should fail")
	}
}

// Messages written within the same timestamp keep insertion order through seq.
func TestMigrate_SeqBreaksTimestampTies(t *testing.T) {
	db := migratedDB(t)

	ids := []string{"c", "a", "b"}
	for _, id := range ids {
		_, err := db.Exec(
			`INSERT INTO chat_history (id, session_id, role, content, created_at) VALUES (?, 's1', 'user', ?, '2026-01-01T00:00:00Z')`,
			id, "msg "+id,
		)
		if err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}

	rows, err := db.Query(`SELECT id, seq FROM chat_history WHERE session_id = 's1' ORDER BY created_at, seq`)
	if err != nil {
		t.Fatalf("query error = %v", err)
	}
	defer func() { _ = rows.Close() }()

	var (
		got     []string
		lastSeq int64
	)
	for rows.Next() {
		var (
			id  string
			seq int64
		)
		if err := rows.Scan(&id, &seq); err != nil {
			t.Fatalf("scan: %v", err)
		}
		if seq <= lastSeq {
			t.Errorf("seq %d for %s is not increasing (previous %d)", seq, id, lastSeq)
		}
		lastSeq = seq
		got = append(got, id)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows error = %v", err)
	}

	if len(got) != len(ids) {
		t.Fatalf("got %d rows, want %d", len(got), len(ids))
	}
	for i := range ids {
		if got[i] != ids[i] {
			t.Errorf("row %d = %s, want %s", i, got[i], ids[i])
		}
	}
}
