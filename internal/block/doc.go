// Package block defines the collaborator contract between dashboard
// building-blocks and the binding compiler, plus the declared-block
// implementation used for blocks described in dashboard files.
//
// A block is created once per logical dashboard position. For lazily loaded
// sections a fresh instance is created per section the first time the section
// is shown and then cached for the process lifetime.
package block
