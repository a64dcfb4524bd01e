// Package session ties the engines together for one authoring session.
//
// A Session caches the pristine template, owns the repeater counts and form
// data, and keeps a live preview document with a binder. Its render state is
// a single machine:
//
//	Idle -> Rendering      Render, AddItem, RemoveItem
//	Rendering -> Idle      render finished
//	Idle -> RestoringData  Restore
//	RestoringData -> Idle  settle window elapsed (checked lazily)
//
// A render requested while the session is not idle fails with ErrBusy and is
// dropped. Live updates received while restoring are recorded but not bound.
//
// Publish runs uploads, compose, save and preview strictly in sequence.
package session
