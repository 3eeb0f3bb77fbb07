// Package firebase provides the Firestore-backed implementations of the call
// collaborators: the membership store on the group document's currentCall
// field, the signaling channel on the group's calls subcollection and the
// announcer writing system messages to the messages collection.
//
// Document layout:
//
//	groups/{groupID}                 currentCall {active, startedBy, participants}
//	groups/{groupID}/calls/{autoID}  one signaling envelope
//	messages/{autoID}                chat messages, type "system" for announcements
//
// Membership mutations run inside transactions so concurrent joins and leaves
// from different clients never lose updates.
package firebase
