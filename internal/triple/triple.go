// Package triple maps target triples to the names GNU config.sub accepts.
package triple

// translations holds the triples whose autotools spelling differs from the
// one used by the enclosing build. Read-only after init.
var translations = map[string]string{
	"armv7-unknown-linux-gnueabihf": "arm-linux-gnueabihf",
}

// Translate returns the autotools host name for id, or id itself when no
// translation is registered.
func Translate(id string) string {
	if t, ok := translations[id]; ok {
		return t
	}
	return id
}

// CrossHost reports the --host value to pass to configure.
// ok is false for native builds, where no --host flag is wanted.
func CrossHost(host, target string) (cross string, ok bool) {
	if host == target {
		return "", false
	}
	return Translate(target), true
}
