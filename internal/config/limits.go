package config

const (
	// MaxOrderTitleLength caps order titles. Short and descriptive.
	MaxOrderTitleLength = 255

	// MaxOrderDescriptionLength caps the free-text order description.
	MaxOrderDescriptionLength = 5000

	// MaxCompanyNameLength caps company display names. The normalized
	// uniqueness key is derived from this field, so it shares the cap.
	MaxCompanyNameLength = 255

	// MaxSpecializationNameLength caps a slot's specialization name.
	MaxSpecializationNameLength = 100

	// MaxRequirementsLength caps requirement text on orders and slots.
	MaxRequirementsLength = 2000
)
