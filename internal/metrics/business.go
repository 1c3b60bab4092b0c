package metrics

// IncrementTopicCreated increments topic creation counter
func (m *Metrics) IncrementTopicCreated() {
	m.safeExecute("IncrementTopicCreated", func() {
		m.TopicCreatedTotal.Inc()
	})
}

// IncrementCommentCreated increments comment creation counter
func (m *Metrics) IncrementCommentCreated() {
	m.safeExecute("IncrementCommentCreated", func() {
		m.CommentCreatedTotal.Inc()
	})
}

// RecordCascadeDeletion counts one cascade from root and the descendants it removed
func (m *Metrics) RecordCascadeDeletion(root string, threads, topics, comments int64) {
	m.safeExecute("RecordCascadeDeletion", func() {
		m.CascadeDeletionsTotal.WithLabelValues(root).Inc()
		m.CascadeRowsDeletedTotal.WithLabelValues("thread").Add(float64(threads))
		m.CascadeRowsDeletedTotal.WithLabelValues("topic").Add(float64(topics))
		m.CascadeRowsDeletedTotal.WithLabelValues("comment").Add(float64(comments))
	})
}

// RecordUserTransition counts a lifecycle transition (ban, unban, deactivate, restore, delete)
func (m *Metrics) RecordUserTransition(transition string) {
	m.safeExecute("RecordUserTransition", func() {
		m.UserTransitionsTotal.WithLabelValues(transition).Inc()
	})
}

// RecordLogin counts a login attempt by result
func (m *Metrics) RecordLogin(result string) {
	m.safeExecute("RecordLogin", func() {
		m.LoginAttemptsTotal.WithLabelValues(result).Inc()
	})
}

// SetUsersTotal sets the users gauge for one status
func (m *Metrics) SetUsersTotal(status string, count int64) {
	m.safeExecute("SetUsersTotal", func() {
		m.UsersTotal.WithLabelValues(status).Set(float64(count))
	})
}

// SetContentTotals sets the content gauges
func (m *Metrics) SetContentTotals(sections, threads, topics, comments int64) {
	m.safeExecute("SetContentTotals", func() {
		m.SectionsTotal.Set(float64(sections))
		m.ThreadsTotal.Set(float64(threads))
		m.TopicsTotal.Set(float64(topics))
		m.CommentsTotal.Set(float64(comments))
	})
}
