// Package version хранит метаданные сборки bookshop, проставляемые через
// -ldflags на этапе компиляции.
package version

import "fmt"

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Info возвращает версию, коммит и дату сборки.
func Info() (v, c, d string) { return version, commit, date }

// String собирает метаданные сборки в одну строку для логов и health endpoint.
func String() string {
	return fmt.Sprintf("version=%s commit=%s date=%s", version, commit, date)
}
