package messages

const (
	FiltersNotNil         = "filters can't be nil"
	MatchNotNil           = "match outcome can't be nil"
	MatchTooFewPlayers    = "match must have at least 2 players, got %d"
	MatchOneSidedResult   = "match can't have only one of winners or losers"
	PlayerNameEmpty       = "player at slot %d has an empty name"
	PlayerUnknownFlag     = "player %s has an unknown result flag %q"
	CouldNotUpdateProfile = "couldn't update the profile of %s"
	CouldNotMirrorRecord  = "couldn't mirror the standings record of %s"
)
