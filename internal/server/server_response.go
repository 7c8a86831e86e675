package server

import (
	"github.com/brk3/habitstate/pkg/habit"
)

type HabitListResponse struct {
	Habits []habit.Habit `json:"habits"`
	Today  string        `json:"today"`
}

type DeletedListResponse struct {
	DeletedHabits []habit.DeletedHabit `json:"deletedHabits"`
}

type ToggleRequest struct {
	Date string `json:"date"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
