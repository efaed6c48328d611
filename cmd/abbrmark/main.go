// Command abbrmark tracks Emmet abbreviations while text is typed, shows
// what they expand to and expands them on request.
//
// Usage:
//
//	abbrmark edit page.html          edit a file in the terminal
//	abbrmark replay session.json     replay a recorded session as JSON frames
//	abbrmark expand 'ul>li*3'        print an expansion
//	abbrmark remove-tag page.html --at 42
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
