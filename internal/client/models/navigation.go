package models

// NavigationKind tells the shell where to go next.
type NavigationKind int

const (
	NavigateNone NavigationKind = iota
	// NavigateList returns to the File Picker.
	NavigateList
	// NavigateEditor opens the document in Target.
	NavigateEditor
	// NavigateRedirect leaves the application for the absolute URL in Target.
	NavigateRedirect
)

func (k NavigationKind) String() string {
	switch k {
	case NavigateList:
		return "list"
	case NavigateEditor:
		return "editor"
	case NavigateRedirect:
		return "redirect"
	default:
		return "none"
	}
}

// Navigation is an intent produced by a component and carried out by the
// shell. Components never navigate on their own.
type Navigation struct {
	Kind   NavigationKind
	Target string
}

func ToList() Navigation { return Navigation{Kind: NavigateList} }

func ToEditor(id FileID) Navigation {
	return Navigation{Kind: NavigateEditor, Target: string(id)}
}

func Redirect(url string) Navigation {
	return Navigation{Kind: NavigateRedirect, Target: url}
}

func (n Navigation) IsRedirect() bool { return n.Kind == NavigateRedirect }
