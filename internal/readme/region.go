package readme

// Region names the pair of markers delimiting a generated section.
type Region struct {
	StartMarker string
	EndMarker   string
}

// Regions maintained by the profile commands.
var (
	ToolsListRegion = Region{
		StartMarker: "<!-- TOOLS_LIST:START -->",
		EndMarker:   "<!-- TOOLS_LIST:END -->",
	}
	BranchActivityRegion = Region{
		StartMarker: "<!-- BRANCH_ACTIVITY:START -->",
		EndMarker:   "<!-- BRANCH_ACTIVITY:END -->",
	}
)
