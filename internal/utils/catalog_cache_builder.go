package utils

import "strings"

func BuildClassesListCacheKey(status, instructorEmail string) string {
	return "classes:list:v1:status=" + strings.ToLower(strings.TrimSpace(status)) +
		":instructor=" + strings.ToLower(strings.TrimSpace(instructorEmail))
}

func BuildPopularClassesCacheKey() string {
	return "classes:popular:v1"
}

func BuildInstructorsCacheKey() string {
	return "instructors:list:v1"
}

func BuildPopularInstructorsCacheKey() string {
	return "instructors:popular:v1"
}
