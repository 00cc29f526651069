package progress

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

// ScanRecords is a bufio.SplitFunc that treats both '\r' and '\n' as record
// terminators. The trailing delimiter is stripped from each token. A partial
// record at EOF is returned as a final token.
func ScanRecords(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if idx := bytes.IndexAny(data, "\r\n"); idx >= 0 {
		return idx + 1, data[:idx], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// Stream reads records from r and invokes fn for each non-empty record. fn
// reports whether to keep reading; returning false stops the stream early
// without error, so a cancelled job's readers do not have to wait for EOF.
// Invalid UTF-8 is replaced rather than dropped so diagnostics keep whatever
// the tool actually printed. Returns the scanner error, if any; callers
// typically log it and move on since a read error here does not decide the
// job outcome.
func Stream(r io.Reader, fn func(record string) bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(ScanRecords)
	for scanner.Scan() {
		record := strings.TrimSpace(strings.ToValidUTF8(scanner.Text(), "�"))
		if record == "" {
			continue
		}
		if !fn(record) {
			return nil
		}
	}
	return scanner.Err()
}
