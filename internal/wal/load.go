package wal

import (
	"bufio"
	"encoding/json"
	"os"

	"github.com/rs/zerolog/log"
)

// Load replays every WAL entry through fn, in the order it was written.
// A missing WAL file is not an error; a malformed line is skipped.
func (m *Manager) Load(fn func(e *Entry)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, err := os.Open(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			// No WAL file exists yet, not an error
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 64<<20)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			log.Warn().Err(err).Msg("Skipping malformed WAL entry")
			continue
		}
		fn(&entry)
	}

	return scanner.Err()
}
