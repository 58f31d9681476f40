package engine

// SlotOrder is the faction of each position in a pick line: Radiant heroes
// first, then the opposing faction, five each.
var SlotOrder = []Team{
	// Radiant
	TeamRadiant,
	TeamRadiant,
	TeamRadiant,
	TeamRadiant,
	TeamRadiant,
	// Dire
	TeamDire,
	TeamDire,
	TeamDire,
	TeamDire,
	TeamDire,
}
