package domain

// Authorization predicates over (actor, document). All of them are pure:
// the actor arrives as an explicit parameter and share state as an explicit
// grant, never via ambient session context. Callers run the relevant check
// before any mutation; the state machine itself assumes it already passed
// (except Publish, which independently refuses sensitive documents).

func CanView(actorID string, doc *Document, hasGrant bool) bool {
	return actorID == doc.OwnerID || hasGrant
}

func CanUpdate(actorID string, doc *Document) bool {
	return actorID == doc.OwnerID
}

func CanDelete(actorID string, doc *Document) bool {
	return actorID == doc.OwnerID
}

// CanDownload: the owner always may; a grantee only with the download flag.
func CanDownload(actorID string, doc *Document, grant *ShareGrant) bool {
	if actorID == doc.OwnerID {
		return true
	}
	return grant != nil && grant.UserID == actorID && grant.CanDownload
}

func CanShare(actorID string, doc *Document) bool {
	return actorID == doc.OwnerID
}

// CanChangeVisibility gates publish and unpublish. Sensitive documents are
// locked private for everyone, including the owner.
func CanChangeVisibility(actorID string, doc *Document) bool {
	if actorID != doc.OwnerID {
		return false
	}
	return !doc.IsSensitive()
}
