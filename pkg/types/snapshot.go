package types

// StateSnapshot (pushed over /ws and returned by GET /trackers/{id}):
//   type: "StateSnapshot"
//   tracker: string                  // tg of the room
//   version: number                  // bumps on every accepted change
//   state:
//     phase: "waiting" | "drafted"
//     picks: { radiant: string[], dire: string[] } // hero names, spaces decoded
//     match: string                  // "<Radiant> vs <Dire>", optional
//     line: string                   // normalized pick line, optional
//
// Error:
//   type: "Error"
//   error: string

// HistoryEntry is one accepted draft as returned by GET /trackers/{id}/history.
type HistoryEntry struct {
	Version  int      `json:"version"`
	Match    string   `json:"match,omitempty"`
	Line     string   `json:"line"`
	Radiant  []string `json:"radiant"`
	Dire     []string `json:"dire"`
	Recorded string   `json:"recorded_at"`
}
