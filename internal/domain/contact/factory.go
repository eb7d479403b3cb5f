package contact

import "time"

// NewFromCreateRequest builds an unsaved Contact; the store assigns the id.
func NewFromCreateRequest(req CreateContactRequest) (Contact, error) {
	now := time.Now().UTC()

	c := Contact{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		AdditionalInfo: req.AdditionalInfo,
		Verified:       false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if req.Birthday != nil {
		d, err := ParseDate(*req.Birthday)

		if err != nil {
			return Contact{}, err
		}

		c.Birthday = &d
	}

	return c, nil
}

// ApplyUpdate overwrites only the fields present in the request.
func (c *Contact) ApplyUpdate(req UpdateContactRequest) error {
	if req.FirstName != nil {
		c.FirstName = *req.FirstName
	}

	if req.LastName != nil {
		c.LastName = *req.LastName
	}

	if req.Email != nil {
		c.Email = *req.Email
	}

	if req.PhoneNumber != nil {
		c.PhoneNumber = *req.PhoneNumber
	}

	if req.Birthday != nil {
		d, err := ParseDate(*req.Birthday)

		if err != nil {
			return err
		}

		c.Birthday = &d
	}

	if req.AdditionalInfo != nil {
		c.AdditionalInfo = req.AdditionalInfo
	}

	c.UpdatedAt = time.Now().UTC()

	return nil
}
