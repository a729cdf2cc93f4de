package models

func (p Project) SearchText() []string { return []string{p.Title, p.Description} }
func (p Project) CategoryName() string { return p.Category }
func (p Project) SkillSet() []string   { return p.Skills }

func (t TalentProfile) SearchText() []string { return []string{t.Name, t.Title, t.Bio} }
func (t TalentProfile) CategoryName() string { return t.Category }
func (t TalentProfile) SkillSet() []string   { return t.Skills }

func (a AgencyProfile) SearchText() []string { return []string{a.AgencyName, a.Name, a.Description} }
func (a AgencyProfile) CategoryName() string { return a.Category }
func (a AgencyProfile) SkillSet() []string   { return a.Skills }

// Trainers have no category; their expertise doubles as the skill set.
func (t TrainerProfile) SearchText() []string { return []string{t.Name, t.Headline, t.Bio} }
func (t TrainerProfile) CategoryName() string { return "" }
func (t TrainerProfile) SkillSet() []string   { return t.Expertise }
