package util

// Set is a set data structure.
type Set map[interface{}]interface{}

// SetFromStrings creates a Set containing the strings from the given slice.
func SetFromStrings(sl []string) Set {
	set := make(Set, len(sl))
	for _, item := range sl {
		set.Add(item)
	}
	return set
}

// Add adds an item to the set.
func (s Set) Add(v interface{}) {
	s[v] = v
}

// Delete removes an item from the set.
func (s Set) Delete(v interface{}) {
	delete(s, v)
}

// Includes returns true/false of whether a value is in the set.
func (s Set) Includes(v interface{}) bool {
	_, ok := s[v]
	return ok
}

// Len is the number of items in the set.
func (s Set) Len() int {
	return len(s)
}

// List returns the list of set elements.
func (s Set) List() []interface{} {
	if s == nil {
		return nil
	}

	r := make([]interface{}, 0, len(s))
	for _, v := range s {
		r = append(r, v)
	}

	return r
}

// UnsafeListOfStrings dangerously casts the elements to strings.
func (s Set) UnsafeListOfStrings() []string {
	if s == nil {
		return nil
	}

	r := make([]string, 0, len(s))
	for _, v := range s {
		r = append(r, v.(string))
	}

	return r
}

// Copy returns a shallow copy of the set.
func (s Set) Copy() Set {
	c := make(Set)
	for k, v := range s {
		c[k] = v
	}
	return c
}
