// Package ui implements the interactive dump page using bubbletea's Elm architecture.
//
// The page mirrors a single browser view:
//  1. a URL field validated as the user types, with a delayed tooltip for invalid values
//  2. an output area with the loading indicator, status panel and error panel
//  3. the download link and partition buttons announced by the backend
//
// The [Model] owns a [session.Controller] and feeds it stream lines one [Msg] at a time.
// Every stream message carries its session ID so output from a superseded session is dropped.
//
// Navigation works like browser history: submitting pushes a location carrying the target,
// and back/forward re-apply the target of the entry they land on.
package ui
