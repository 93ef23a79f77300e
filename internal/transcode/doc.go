// Package transcode normalizes remote video locators into seekable,
// web-playable local files.
//
// Output filenames derive deterministically from (session, clip), so repeating
// a conversion returns the existing file without invoking the external tool.
// Segmented-streaming manifests are read by the tool directly; progressive
// files are downloaded to a temp path first. Batch conversion aggregates
// per-clip outcomes and never aborts on a single clip's failure.
package transcode
