package msgs

const (
	MsgOperationSuccessful = "Operation successful"
	MsgOperationFailed     = "Operation failed"
	MsgBoardCreated        = "Board created successfully"
	MsgJoinedBoard         = "Joined board successfully"
	MsgSessionSaved        = "Session saved successfully"
	MsgSessionLoaded       = "Session loaded successfully"
	MsgSessionDeleted      = "Session deleted successfully"
	MsgImageUploaded       = "Image uploaded successfully"
	MsgYouMustJoinFirst    = "You must join the board first"
)
