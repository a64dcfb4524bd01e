// Package binder keeps a live preview document in sync with form edits.
//
// Bind resolves where a key lives once, by scanning for its token, and tags
// the hosting nodes: data-daas-bind for elements whose only content is the
// token, data-daas-bind-partial for text mixing the token with other text,
// data-daas-bind-href for anchors. The tags are backed by Index so later
// edits go straight to the nodes. Partial text is re-rendered from a pristine
// snapshot with every key bound to it, which keeps several placeholders in
// one text node working regardless of edit order.
package binder
