package validation

const NotesMaxLen = 500

func ValidateProgressValue(value float64) error {
	if value <= 0 {
		return Fieldf("value", "value must be positive")
	}
	return nil
}

func ValidateNotes(notes string) error {
	if len(notes) > NotesMaxLen {
		return Fieldf("notes", "notes are too long (max %d characters)", NotesMaxLen)
	}
	return nil
}
