package interfaces

// NavigationGuard decides whether a URL may be opened
type NavigationGuard interface {
	// CheckNavigation returns an error describing why the URL is refused
	CheckNavigation(rawURL string) error
}
