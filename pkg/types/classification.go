package types

// Level identifies whether a classification was decided at folder level
// (possibly inherited by files in the subtree) or for an individual file.
type Level string

const (
	LevelFolder Level = "folder"
	LevelFile   Level = "file"
)

// Classification is the engine's record of a routing decision for a path.
// Folders the engine descended through get a record with Descended=true;
// such records are provisional context, not terminal routing decisions.
type Classification struct {
	Path                 string
	Category             Category
	Confidence           float64
	Reason               string
	Level                Level
	ParentFolder         string   // Set for files classified via a folder decision
	AncestorDescriptions []string // Root-to-parent folder descriptions
	Descended            bool     // True for folders that were descended through
}

// Terminal reports whether this record is a final routing decision.
func (c Classification) Terminal() bool {
	return !c.Descended
}
