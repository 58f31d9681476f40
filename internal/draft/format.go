package draft

import "strings"

// CommandSeparator joins hero names in a pick line.
const CommandSeparator = ","

// FormatCommand renders a roster as a pick line. Names are not trimmed.
func FormatCommand(r Roster) string {
	return strings.Join(r.Strings(), CommandSeparator)
}

// FormatMatchLabel renders "<radiant> vs <opposing>".
func FormatMatchLabel(radiant, opposing TeamLabel) string {
	return radiant.Name + " vs " + opposing.Name
}
