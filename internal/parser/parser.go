// Пакет parser — разбор access-логов nginx.
// ParseLine — чистая функция разбора одной строки.
// Normalize — fingerprint файла и упорядоченный список распарсенных записей.
package parser

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bigkaa/logsight/internal/domain/model"
)

// logLinePattern — грамматика строки access-лога:
// <ip> <ident> <user> [<timestamp>] "<method> <uri> <proto>" <status> <bytes> "<ua>"
var logLinePattern = regexp.MustCompile(
	`^(\S+) \S+ \S+ \[([^\]]+)\] "(\S+) (\S+) \S+" (\d{3}) (\d+) "([^"]*)"`,
)

// timestampLayout — формат времени nginx: 10/Oct/2023:13:55:36 -0700.
const timestampLayout = "02/Jan/2006:15:04:05 -0700"

// ParseLine разбирает одну строку access-лога в LogEntry.
// Строка, не соответствующая грамматике, возвращает ok=false — это не
// ошибка, вызывающая сторона молча пропускает такие строки. Ошибка
// разбора любого под-поля (время, статус, байты) отбрасывает строку
// целиком, частичных записей не бывает.
// Время разбирается вместе со смещением и нормализуется к UTC, чтобы
// сравнения по точному равенству и диапазонам были однозначны.
func ParseLine(line string) (model.LogEntry, bool) {
	m := logLinePattern.FindStringSubmatch(line)
	if m == nil {
		return model.LogEntry{}, false
	}

	ts, err := time.Parse(timestampLayout, m[2])
	if err != nil {
		return model.LogEntry{}, false
	}

	status, err := strconv.Atoi(m[5])
	if err != nil {
		return model.LogEntry{}, false
	}

	bytes, err := strconv.ParseInt(m[6], 10, 64)
	if err != nil {
		return model.LogEntry{}, false
	}

	return model.LogEntry{
		Timestamp: ts.UTC(),
		IP:        m[1],
		Method:    m[3],
		URI:       m[4],
		Status:    status,
		Bytes:     bytes,
		UserAgent: m[7],
		// Referer отсутствует в грамматике — всегда nil
		Referer: nil,
	}, true
}

// Result — результат нормализации файла.
type Result struct {
	// Fingerprint — SHA-256 исходных байтов (hex)
	Fingerprint string
	// Entries — распарсенные записи в порядке следования строк
	Entries []model.LogEntry
	// TotalLines — количество непустых строк во входе
	TotalLines int
	// Dropped — количество строк, не прошедших грамматику
	Dropped int
}

// Normalize вычисляет content-addressed fingerprint файла и разбирает
// его строки. Байты декодируются как UTF-8 best-effort: недекодируемые
// последовательности отбрасываются, а не роняют файл целиком.
// Несовпавшие строки учитываются в Dropped, но ошибкой не являются.
func Normalize(raw []byte) Result {
	sum := sha256.Sum256(raw)

	res := Result{
		Fingerprint: hex.EncodeToString(sum[:]),
	}

	text := strings.ToValidUTF8(string(raw), "")
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		res.TotalLines++

		entry, ok := ParseLine(line)
		if !ok {
			res.Dropped++
			continue
		}
		entry.FileFingerprint = res.Fingerprint
		res.Entries = append(res.Entries, entry)
	}

	return res
}

// Fingerprint возвращает SHA-256 fingerprint сырых байтов без разбора строк.
func Fingerprint(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
