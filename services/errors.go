package services

import "errors"

// Shared errors used across services and the HTTP error mapping.
var (
	// Not-found family.
	ErrNotFound             = errors.New("requested resource not found")
	ErrClubNotFound         = errors.New("club not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrEventNotFound        = errors.New("event not found")
	ErrTrackNotFound        = errors.New("track not found")
	ErrDriverNotFound       = errors.New("driver not found")
	ErrMembershipNotFound   = errors.New("membership not found")
	ErrChampionshipNotFound = errors.New("championship not found")

	// Validation and business rules.
	ErrValidationFailed         = errors.New("validation failed")
	ErrPasswordTooShort         = errors.New("password is too short")
	ErrEventNameRequired        = errors.New("event name is required")
	ErrEventInvalidWindow       = errors.New("event nominations close must not be before nominations open")
	ErrEventInvalidPrices       = errors.New("event prices must not be negative")
	ErrChampionshipNameRequired = errors.New("championship name is required")
	ErrChampionshipInvalidRounds = errors.New("championship drop rounds must be fewer than total rounds")
	ErrDriverNameRequired       = errors.New("driver name is required")

	// Nomination workflow.
	ErrNominationsClosed       = errors.New("nominations are not open for this event")
	ErrMembersOnlyEvent        = errors.New("event accepts nominations from active members only")
	ErrDriverNotSelected       = errors.New("a driver must be selected before choosing classes")
	ErrDriverNotInHousehold    = errors.New("driver does not belong to this household")
	ErrClass1Required          = errors.New("first class selection is required")
	ErrDuplicateClassSelection = errors.New("the same class cannot be selected twice")
	ErrClassNotOffered         = errors.New("class is not offered for this event")
	ErrPreferenceDisabled      = errors.New("preference class is not enabled for this event")
	ErrWorkflowNotSubmittable  = errors.New("nomination workflow is not ready to submit")

	// Membership lifecycle.
	ErrAlreadyFamily       = errors.New("membership is already a family membership")
	ErrMembershipExists    = errors.New("household already has a membership")
	ErrDriverLimitExceeded = errors.New("only family memberships can add additional drivers")
	ErrMembershipInvalidType = errors.New("invalid membership type")

	// Conflicts.
	ErrUserEmailConflict        = errors.New("email address is already in use")
	ErrNominationConflict       = errors.New("driver is already nominated for this event")
	ErrDriverNumberConflict     = errors.New("driver number is already taken")
	ErrChampionshipNameConflict = errors.New("championship name already exists")

	// Authentication and authorization.
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
)
