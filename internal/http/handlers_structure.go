package http

import (
	"net/http"
)

func (s *Server) handleCreateAssociation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string `json:"name"`
		CUI           string `json:"cui"`
		Address       string `json:"address"`
		Administrator string `json:"administrator"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	a, err := s.structure.CreateAssociation(r.Context(), req.Name)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAssociationJSON(a))
}

func (s *Server) handleListAssociations(w http.ResponseWriter, r *http.Request) {
	list, err := s.structure.ListAssociations(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]associationJSON, 0, len(list))
	for _, a := range list {
		out = append(out, toAssociationJSON(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetAssociation(w http.ResponseWriter, r *http.Request) {
	a, err := s.structure.GetAssociation(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssociationJSON(a))
}

func (s *Server) handleRenameAssociation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	a, err := s.structure.RenameAssociation(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssociationJSON(a))
}

func (s *Server) handleDeleteAssociation(w http.ResponseWriter, r *http.Request) {
	if err := s.structure.DeleteAssociation(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateBlock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	b, err := s.structure.CreateBlock(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, blockJSON{ID: b.ID, AssociationID: b.AssociationID, Name: b.Name})
}

func (s *Server) handleListBlocks(w http.ResponseWriter, r *http.Request) {
	blocks, err := s.structure.ListBlocks(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]blockJSON, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, blockJSON{ID: b.ID, AssociationID: b.AssociationID, Name: b.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteBlock(w http.ResponseWriter, r *http.Request) {
	if err := s.structure.DeleteBlock(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateStair(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	st, err := s.structure.CreateStair(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, stairJSON{ID: st.ID, BlockID: st.BlockID, Name: st.Name})
}

func (s *Server) handleListStairs(w http.ResponseWriter, r *http.Request) {
	stairs, err := s.structure.ListStairs(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]stairJSON, 0, len(stairs))
	for _, st := range stairs {
		out = append(out, stairJSON{ID: st.ID, BlockID: st.BlockID, Name: st.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteStair(w http.ResponseWriter, r *http.Request) {
	if err := s.structure.DeleteStair(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateApartment(w http.ResponseWriter, r *http.Request) {
	var req apartmentJSON
	if !decodeJSON(w, r, &req) {
		return
	}

	apt := req.toCore()
	apt.StairID = r.PathValue("id")
	created, err := s.structure.CreateApartment(r.Context(), apt)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toApartmentJSON(created))
}

func (s *Server) handleListApartments(w http.ResponseWriter, r *http.Request) {
	apartments, err := s.structure.ListApartments(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]apartmentJSON, 0, len(apartments))
	for _, a := range apartments {
		out = append(out, toApartmentJSON(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetApartment(w http.ResponseWriter, r *http.Request) {
	a, err := s.structure.GetApartment(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toApartmentJSON(a))
}

func (s *Server) handleUpdateApartment(w http.ResponseWriter, r *http.Request) {
	var req apartmentJSON
	if !decodeJSON(w, r, &req) {
		return
	}

	apt := req.toCore()
	apt.ID = r.PathValue("id")
	if apt.StairID == "" {
		existing, err := s.structure.GetApartment(r.Context(), apt.ID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		apt.StairID = existing.StairID
	}
	if err := s.structure.UpdateApartment(r.Context(), apt); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toApartmentJSON(apt))
}

func (s *Server) handleDeleteApartment(w http.ResponseWriter, r *http.Request) {
	if err := s.structure.DeleteApartment(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAssociationDeleteImpact(w http.ResponseWriter, r *http.Request) {
	counts, err := s.structure.AssociationDeleteImpact(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleBlockDeleteImpact(w http.ResponseWriter, r *http.Request) {
	counts, err := s.structure.BlockDeleteImpact(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleStairDeleteImpact(w http.ResponseWriter, r *http.Request) {
	counts, err := s.structure.StairDeleteImpact(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}
